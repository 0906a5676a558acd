package annotate

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

// Tok is shorthand for a token with a single trailing space.
func Tok(text, lemma, pos string) Token {
	return Token{Text: text, Lemma: lemma, POS: pos, WS: " "}
}

// Builder assembles a Document sentence by sentence
type Builder struct {
	doc Document
}

// NewBuilder creates an empty document builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddSentence appends tokens as a new sentence, assigning absolute indices.
func (b *Builder) AddSentence(toks ...Token) Sentence {
	start := len(b.doc.Toks)
	for _, t := range toks {
		t.Index = len(b.doc.Toks)
		b.doc.Toks = append(b.doc.Toks, t)
	}
	s := Sentence{Start: start, End: len(b.doc.Toks)}
	b.doc.Sents = append(b.doc.Sents, s)
	return s
}

// AddChunk records a noun chunk over absolute token indices [start, end).
func (b *Builder) AddChunk(start, end int) *Builder {
	b.doc.Chunks = append(b.doc.Chunks, Span{Start: start, End: end})
	return b
}

// AddEntity records a named entity over absolute token indices [start, end).
func (b *Builder) AddEntity(start, end int, label string) *Builder {
	b.doc.Ents = append(b.doc.Ents, Span{Start: start, End: end, Label: label})
	return b
}

// WithoutNounChunks marks the document as coming from a language without
// noun chunk support.
func (b *Builder) WithoutNounChunks() *Builder {
	b.doc.NoNounChunks = true
	return b
}

// Build returns the assembled document.
func (b *Builder) Build() *Document {
	doc := b.doc
	return &doc
}

// Decode reads a YAML (or JSON) encoded document and validates it
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("%w: decode document: %v", internalerr.ErrInvalidInput, err)
	}

	for i := range doc.Toks {
		if doc.Toks[i].Index == 0 {
			doc.Toks[i].Index = i
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
