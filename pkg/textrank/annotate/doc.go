// Package annotate defines the narrow interface between the ranking engine
// and whatever annotation pipeline produced tokens, sentences, noun chunks
// and entities for a document.
package annotate

import (
	"fmt"
	"strings"

	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

// Token is one annotated token of a document
type Token struct {
	Index  int    `yaml:"i" json:"i"`
	Text   string `yaml:"text" json:"text"`
	Lemma  string `yaml:"lemma" json:"lemma"`
	POS    string `yaml:"pos" json:"pos"`
	WS     string `yaml:"ws,omitempty" json:"ws,omitempty"` // trailing whitespace
	IsStop bool   `yaml:"stop,omitempty" json:"stop,omitempty"`
}

// Span is a half-open token range [Start, End)
type Span struct {
	Start int    `yaml:"start" json:"start"`
	End   int    `yaml:"end" json:"end"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Text  string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Len returns the number of tokens in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// StartsIn reports whether s begins inside [start, end).
func (s Span) StartsIn(start, end int) bool {
	return start <= s.Start && s.Start < end
}

// Sentence is a half-open token range [Start, End) of one sentence
type Sentence struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// TokenStream yields the ordered tokens of a document
type TokenStream interface {
	Tokens() []Token
}

// SentenceBounds yields the sentence boundaries of a document
type SentenceBounds interface {
	Sentences() []Sentence
}

// CandidateSpans yields candidate phrase spans. NounChunks returns
// internalerr.ErrNoNounChunks when the annotator has no chunker for the
// document's language.
type CandidateSpans interface {
	NounChunks() ([]Span, error)
	Entities() []Span
}

// Annotated is everything the engine consumes from an annotator
type Annotated interface {
	TokenStream
	SentenceBounds
	CandidateSpans
}

// Document is an in-memory annotated document
type Document struct {
	Toks         []Token    `yaml:"tokens" json:"tokens"`
	Sents        []Sentence `yaml:"sentences" json:"sentences"`
	Chunks       []Span     `yaml:"noun_chunks" json:"noun_chunks"`
	Ents         []Span     `yaml:"entities" json:"entities"`
	NoNounChunks bool       `yaml:"no_noun_chunks,omitempty" json:"no_noun_chunks,omitempty"`
}

// Tokens implements TokenStream.
func (d *Document) Tokens() []Token { return d.Toks }

// Sentences implements SentenceBounds.
func (d *Document) Sentences() []Sentence { return d.Sents }

// NounChunks implements CandidateSpans.
func (d *Document) NounChunks() ([]Span, error) {
	if d.NoNounChunks {
		return nil, internalerr.ErrNoNounChunks
	}
	return withText(d, d.Chunks), nil
}

// Entities implements CandidateSpans.
func (d *Document) Entities() []Span {
	return withText(d, d.Ents)
}

// Validate checks that token indices are dense and that every sentence and
// span lies inside the token stream
func (d *Document) Validate() error {
	n := len(d.Toks)
	for i, tok := range d.Toks {
		if tok.Index != i {
			return fmt.Errorf("%w: token %d has index %d", internalerr.ErrInvalidInput, i, tok.Index)
		}
	}

	prevEnd := 0
	for i, s := range d.Sents {
		if s.Start < prevEnd || s.End < s.Start || s.End > n {
			return fmt.Errorf("%w: sentence %d [%d,%d) out of order or range", internalerr.ErrInvalidInput, i, s.Start, s.End)
		}
		prevEnd = s.End
	}

	for _, spans := range [][]Span{d.Chunks, d.Ents} {
		for _, s := range spans {
			if s.Start < 0 || s.End > n || s.End <= s.Start {
				return fmt.Errorf("%w: span [%d,%d) out of range", internalerr.ErrInvalidInput, s.Start, s.End)
			}
		}
	}

	return nil
}

func withText(d *Document, spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	out := make([]Span, len(spans))
	for i, s := range spans {
		if s.Text == "" {
			s.Text = SpanText(d, s.Start, s.End)
		}
		out[i] = s
	}
	return out
}

// SpanText joins the tokens of [start, end) with their whitespace, dropping
// the trailing whitespace of the final token.
func SpanText(ts TokenStream, start, end int) string {
	toks := ts.Tokens()
	if start < 0 {
		start = 0
	}
	if end > len(toks) {
		end = len(toks)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(toks[i].Text)
		if i < end-1 {
			b.WriteString(toks[i].WS)
		}
	}
	return strings.TrimSpace(b.String())
}

// SentenceText returns the text of one sentence.
func SentenceText(ts TokenStream, s Sentence) string {
	return SpanText(ts, s.Start, s.End)
}

// LeadingWhitespace returns the whitespace preceding a sentence: the trailing
// whitespace of the previous token plus any whitespace-only tokens opening
// the sentence.
func LeadingWhitespace(ts TokenStream, s Sentence) string {
	toks := ts.Tokens()

	var b strings.Builder
	if s.Start > 0 && s.Start <= len(toks) {
		b.WriteString(toks[s.Start-1].WS)
	}
	for i := s.Start; i < s.End && i < len(toks); i++ {
		if strings.TrimSpace(toks[i].Text) != "" {
			break
		}
		b.WriteString(toks[i].Text)
		b.WriteString(toks[i].WS)
	}
	return b.String()
}
