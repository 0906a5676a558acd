// Package summarize selects the sentences of a document that best cover its
// top-ranked phrases.
//
// The top phrases form a unit vector of their normalized ranks. A sentence
// is represented by the phrases it contains; its distance from the unit
// vector is the norm of the coordinates it misses. Sentences (or whole
// paragraphs) with the smallest distance make the summary.
package summarize

import (
	"iter"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
)

// Level selects the summary unit
type Level string

const (
	LevelSentence  Level = "sentence"
	LevelParagraph Level = "paragraph"
)

// Options controls summary selection
type Options struct {
	LimitPhrases   int   `yaml:"limit_phrases"`
	LimitSentences int   `yaml:"limit_sentences"`
	PreserveOrder  bool  `yaml:"preserve_order"`
	Level          Level `yaml:"level"`
}

// DefaultOptions returns the standard summary settings
func DefaultOptions() Options {
	return Options{
		LimitPhrases:   10,
		LimitSentences: 4,
		Level:          LevelSentence,
	}
}

// Document is what the summarizer reads from an annotated document
type Document interface {
	annotate.TokenStream
	annotate.SentenceBounds
}

// Sentence is a scored sentence of the document
type Sentence struct {
	ID       int     `json:"id"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Phrases  []int   `json:"phrases,omitempty"` // indices into the unit vector
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// Paragraph is a run of sentences scored by their mean distance
type Paragraph struct {
	ID        int
	Sentences []int
	Distance  float64
}

// UnitVector normalizes the ranks of the first limit phrases to sum to 1.
// When they sum to 0 the vector is all zeros.
func UnitVector(phrases []phrase.Phrase, limit int) []float64 {
	if limit > len(phrases) {
		limit = len(phrases)
	}
	if limit < 0 {
		limit = 0
	}

	unit := make([]float64, limit)
	total := 0.0
	for i := 0; i < limit; i++ {
		unit[i] = phrases[i].Rank
		total += phrases[i].Rank
	}
	if total == 0 {
		return make([]float64, limit)
	}
	for i := range unit {
		unit[i] /= total
	}
	return unit
}

// SentenceDistances scores every sentence of doc against the unit vector of
// the top limit phrases. A phrase belongs to every sentence in which one of
// its chunks starts, so a chunk crossing a boundary counts for the first.
func SentenceDistances(doc Document, phrases []phrase.Phrase, limit int) []Sentence {
	unit := UnitVector(phrases, limit)
	bounds := doc.Sentences()

	sents := make([]Sentence, len(bounds))
	present := make([]map[int]struct{}, len(bounds))
	for i, b := range bounds {
		sents[i] = Sentence{ID: i, Start: b.Start, End: b.End}
		present[i] = make(map[int]struct{})
	}

	for p := range unit {
		for _, chunk := range phrases[p].Chunks {
			for i, b := range bounds {
				if chunk.StartsIn(b.Start, b.End) {
					present[i][p] = struct{}{}
					break
				}
			}
		}
	}

	for i := range sents {
		sum := 0.0
		for p, coord := range unit {
			if _, ok := present[i][p]; ok {
				sents[i].Phrases = append(sents[i].Phrases, p)
				continue
			}
			sum += coord * coord
		}
		sents[i].Distance = math.Sqrt(sum)
	}
	return sents
}

// Paragraphs groups sentences into paragraphs. A sentence preceded by
// whitespace holding more than one newline starts a new paragraph.
func Paragraphs(doc Document, sents []Sentence) []Paragraph {
	var paras []Paragraph
	for _, s := range sents {
		lead := annotate.LeadingWhitespace(doc, annotate.Sentence{Start: s.Start, End: s.End})
		if len(paras) == 0 || strings.Count(lead, "\n") > 1 {
			paras = append(paras, Paragraph{ID: len(paras)})
		}
		p := &paras[len(paras)-1]
		p.Sentences = append(p.Sentences, s.ID)
	}

	for i := range paras {
		sum := 0.0
		for _, id := range paras[i].Sentences {
			sum += sents[id].Distance
		}
		paras[i].Distance = sum / float64(len(paras[i].Sentences))
	}
	return paras
}

// Summarize yields at most opts.LimitSentences sentences closest to the
// top phrases. The sequence is computed lazily and can be ranged over
// once; later iterations yield nothing. Use slices.Collect to keep it.
func Summarize(doc Document, phrases []phrase.Phrase, opts Options) iter.Seq[Sentence] {
	done := false
	return func(yield func(Sentence) bool) {
		if done {
			return
		}
		done = true

		if opts.LimitSentences <= 0 {
			return
		}
		sents := SentenceDistances(doc, phrases, opts.LimitPhrases)
		for i := range sents {
			sents[i].Text = annotate.SentenceText(doc, annotate.Sentence{Start: sents[i].Start, End: sents[i].End})
		}

		var ids []int
		if opts.Level == LevelParagraph {
			ids = paragraphSelection(doc, sents, opts)
		} else {
			ids = sentenceSelection(sents, opts)
		}

		for _, id := range ids {
			if !yield(sents[id]) {
				return
			}
		}
	}
}

func sentenceSelection(sents []Sentence, opts Options) []int {
	ids := make([]int, len(sents))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return sents[ids[a]].Distance < sents[ids[b]].Distance
	})

	if len(ids) > opts.LimitSentences {
		ids = ids[:opts.LimitSentences]
	}
	if opts.PreserveOrder {
		slices.Sort(ids)
	}
	return ids
}

// paragraphSelection ranks paragraphs and flattens the best ones into
// sentence ids, stopping at the sentence limit.
func paragraphSelection(doc Document, sents []Sentence, opts Options) []int {
	paras := Paragraphs(doc, sents)
	sort.SliceStable(paras, func(a, b int) bool {
		return paras[a].Distance < paras[b].Distance
	})

	var ids []int
	for _, p := range paras {
		for _, id := range p.Sentences {
			if len(ids) == opts.LimitSentences {
				break
			}
			ids = append(ids, id)
		}
	}
	if opts.PreserveOrder {
		slices.Sort(ids)
	}
	return ids
}
