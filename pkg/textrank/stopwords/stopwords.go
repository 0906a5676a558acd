// Package stopwords holds the lemma/POS stopword table consulted while
// building the lemma graph.
package stopwords

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textrank/pkg/textrank/internalerr"
)

// Table maps a lemma to the POS tags for which it is ignored
type Table struct {
	stops map[string]map[string]struct{}
}

// New creates a table from lemma → POS tags entries
func New(entries map[string][]string) *Table {
	t := &Table{stops: make(map[string]map[string]struct{}, len(entries))}
	for lemma, tags := range entries {
		t.Add(lemma, tags...)
	}
	return t
}

// IsStop reports whether the lemma is a stopword for the given POS tag.
// A nil table has no stopwords.
func (t *Table) IsStop(lemma, pos string) bool {
	if t == nil {
		return false
	}
	tags, ok := t.stops[lemma]
	if !ok {
		return false
	}
	_, ok = tags[pos]
	return ok
}

// Add registers POS tags for a lemma
func (t *Table) Add(lemma string, tags ...string) {
	set, ok := t.stops[lemma]
	if !ok {
		set = make(map[string]struct{}, len(tags))
		t.stops[lemma] = set
	}
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
}

// Remove drops a lemma entirely
func (t *Table) Remove(lemma string) {
	delete(t.stops, lemma)
}

// Len returns the number of lemmas in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.stops)
}

// Lemmas returns all lemmas, sorted
func (t *Table) Lemmas() []string {
	if t == nil {
		return nil
	}
	result := make([]string, 0, len(t.stops))
	for lemma := range t.stops {
		result = append(result, lemma)
	}
	sort.Strings(result)
	return result
}

// Load reads a `lemma: [POS, ...]` mapping from a YAML or JSON file.
// A missing file yields an empty table; an unreadable one is a
// configuration error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stopwords %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	var entries map[string][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: stopwords %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return New(entries), nil
}

// Source is either an inline mapping or a path to a file holding one
type Source struct {
	Path   string
	Inline map[string][]string
}

// UnmarshalYAML accepts a mapping (inline table) or a scalar (file path).
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var entries map[string][]string
		if err := node.Decode(&entries); err != nil {
			return fmt.Errorf("%w: stopwords mapping: %v", internalerr.ErrInvalidConfig, err)
		}
		s.Inline = entries
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		if node.Tag != "!!str" {
			return fmt.Errorf("%w: stopwords must be a mapping or a file path, got %s", internalerr.ErrInvalidConfig, node.Value)
		}
		s.Path = node.Value
		return nil
	default:
		return fmt.Errorf("%w: stopwords must be a mapping or a file path", internalerr.ErrInvalidConfig)
	}
}

// Resolve turns the source into a table. Inline entries win over a path.
func (s Source) Resolve() (*Table, error) {
	if s.Inline != nil {
		return New(s.Inline), nil
	}
	if s.Path == "" {
		return New(nil), nil
	}
	return Load(s.Path)
}
