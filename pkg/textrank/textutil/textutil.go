// Package textutil prepares raw text before it is handed to an annotator:
// markup stripping, quote filtering, paragraph splitting and character
// cleanup.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	patForward = regexp.MustCompile(`\n-+ Forwarded message -+\n`)
	patReplied = regexp.MustCompile(`\nOn.*\d+.*\n?wrote:\n+>`)
	patUnsub   = regexp.MustCompile(`\n-+\nTo unsubscribe,.*\nFor additional commands,.*`)

	cleanupReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'", "`", "'",
		"…", "...", "–", "-",
	)
)

// SplitGrafs groups lines into paragraphs separated by blank lines.
// Lines are trimmed and joined with "\n".
func SplitGrafs(lines []string) []string {
	var grafs []string
	var graf []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(graf) > 0 {
				grafs = append(grafs, strings.Join(graf, "\n"))
				graf = nil
			}
			continue
		}
		graf = append(graf, line)
	}
	if len(graf) > 0 {
		grafs = append(grafs, strings.Join(graf, "\n"))
	}

	return grafs
}

// FilterQuotes removes quoted material from a message and returns its
// paragraphs. For email it also drops non-printable characters, forwarded
// and replied-to text and a trailing mailing list footer. Lines starting
// with ">" always become paragraph breaks.
func FilterQuotes(text string, isEmail bool) []string {
	if isEmail {
		text = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
				return -1
			}
			return r
		}, text)

		for _, pat := range []*regexp.Regexp{patForward, patReplied, patUnsub} {
			if loc := pat.FindStringIndex(text); loc != nil {
				text = text[:loc[0]]
			}
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, ">") {
			lines[i] = ""
		}
	}

	return SplitGrafs(lines)
}

// CleanupText folds text to plain ASCII: lines are joined with single
// spaces, typographic quotes and dashes are replaced, and whatever does not
// survive NFKD decomposition as ASCII is dropped.
func CleanupText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	x := strings.TrimSpace(strings.Join(lines, " "))

	x = cleanupReplacer.Replace(x)

	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(x))
}
