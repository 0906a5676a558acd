package textutil

import (
	"strings"
	"testing"
)

func TestSplitGrafs(t *testing.T) {
	lines := []string{"  first line", "second line ", "", "   ", "third", ""}
	grafs := SplitGrafs(lines)

	if len(grafs) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %q", len(grafs), grafs)
	}
	if grafs[0] != "first line\nsecond line" {
		t.Errorf("Unexpected first paragraph %q", grafs[0])
	}
	if grafs[1] != "third" {
		t.Errorf("Unexpected second paragraph %q", grafs[1])
	}
}

func TestSplitGrafsEmpty(t *testing.T) {
	if grafs := SplitGrafs(nil); len(grafs) != 0 {
		t.Errorf("Expected no paragraphs, got %q", grafs)
	}
}

func TestFilterQuotesReply(t *testing.T) {
	text := "Thanks for the notes.\n\nSee you Monday.\nOn Tue, Mar 3, 2020 at 10:00 Bob wrote:\n> earlier text\n> more"
	grafs := FilterQuotes(text, true)

	if len(grafs) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %q", len(grafs), grafs)
	}
	if grafs[1] != "See you Monday." {
		t.Errorf("Reply quote not stripped: %q", grafs[1])
	}
}

func TestFilterQuotesForward(t *testing.T) {
	text := "FYI below\n---------- Forwarded message ---------\nFrom: someone"
	grafs := FilterQuotes(text, true)

	if len(grafs) != 1 || grafs[0] != "FYI below" {
		t.Errorf("Forwarded text not stripped: %q", grafs)
	}
}

func TestFilterQuotesUnsubscribe(t *testing.T) {
	text := "Release is out.\n---\nTo unsubscribe, e-mail: list@example.org\nFor additional commands, e-mail: help@example.org"
	grafs := FilterQuotes(text, true)

	if len(grafs) != 1 || grafs[0] != "Release is out." {
		t.Errorf("Footer not stripped: %q", grafs)
	}
}

func TestFilterQuotesPlainText(t *testing.T) {
	text := "one\n> quoted\ntwo"
	grafs := FilterQuotes(text, false)

	if len(grafs) != 2 || grafs[0] != "one" || grafs[1] != "two" {
		t.Errorf("Quoted line should break paragraphs: %q", grafs)
	}
}

func TestCleanupText(t *testing.T) {
	in := "  “Café” – it’s\n   naïve…  "
	want := `"Cafe" - it's naive...`

	if got := CleanupText(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHTMLText(t *testing.T) {
	in := `<html><head><style>p{}</style></head><body><p>Graph <b>ranking</b> works.</p><script>x()</script><p>Second</p></body></html>`
	got := HTMLText(in)

	if strings.Contains(got, "x()") || strings.Contains(got, "p{}") {
		t.Errorf("Script or style leaked: %q", got)
	}

	grafs := SplitGrafs(strings.Split(got, "\n"))
	if len(grafs) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %q", len(grafs), grafs)
	}
	if grafs[0] != "Graph ranking works." {
		t.Errorf("Unexpected paragraph %q", grafs[0])
	}
}
