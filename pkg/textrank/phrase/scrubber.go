package phrase

import (
	"fmt"
	"strings"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/textutil"
)

// Scrubber maps a candidate span to the canonical text phrases are
// grouped by. Span.Text is populated before a scrubber is called.
type Scrubber func(span annotate.Span) string

// Scrubber names accepted by NamedScrubber
const (
	ScrubDefault  = "default"
	ScrubLower    = "lower"
	ScrubManiacal = "maniacal"
	ScrubStrip    = "strip"
)

// DefaultScrubber removes stray apostrophes and keeps case.
func DefaultScrubber(span annotate.Span) string {
	return strings.TrimSpace(strings.ReplaceAll(span.Text, "'", ""))
}

// LowerScrubber lowercases and removes apostrophes.
func LowerScrubber(span annotate.Span) string {
	return strings.ToLower(DefaultScrubber(span))
}

// ManiacalScrubber folds the text to plain ASCII.
func ManiacalScrubber(span annotate.Span) string {
	return textutil.CleanupText(span.Text)
}

// StripScrubber only trims surrounding whitespace.
func StripScrubber(span annotate.Span) string {
	return strings.TrimSpace(span.Text)
}

// NamedScrubber looks up a scrubber by its configuration name
func NamedScrubber(name string) (Scrubber, error) {
	switch name {
	case "", ScrubDefault:
		return DefaultScrubber, nil
	case ScrubLower:
		return LowerScrubber, nil
	case ScrubManiacal:
		return ManiacalScrubber, nil
	case ScrubStrip:
		return StripScrubber, nil
	default:
		return nil, fmt.Errorf("scrubber %q: %w", name, internalerr.ErrInvalidScrubber)
	}
}

// ResolveScrubber accepts any of the supported scrubber shapes and is meant
// for callers building Options from loosely typed input; Options.Scrubber
// itself is already typed. nil selects DefaultScrubber and a string is a
// NamedScrubber name. A legacy text-only func(string) string is adapted and
// returned together with ErrDeprecatedScrubber; callers should log that
// error and carry on. Anything else yields ErrInvalidScrubber.
func ResolveScrubber(v any) (Scrubber, error) {
	switch fn := v.(type) {
	case nil:
		return DefaultScrubber, nil
	case Scrubber:
		if fn == nil {
			return DefaultScrubber, nil
		}
		return fn, nil
	case func(annotate.Span) string:
		if fn == nil {
			return DefaultScrubber, nil
		}
		return fn, nil
	case string:
		return NamedScrubber(fn)
	case func(string) string:
		if fn == nil {
			return DefaultScrubber, nil
		}
		adapted := func(span annotate.Span) string {
			return fn(span.Text)
		}
		return adapted, fmt.Errorf("text-only scrubber adapted to span scrubber: %w", internalerr.ErrDeprecatedScrubber)
	default:
		return nil, fmt.Errorf("unsupported scrubber type %T: %w", v, internalerr.ErrInvalidScrubber)
	}
}
