package search

import (
	"strings"
	"testing"

	"github.com/coolbeans/rulebook/pkg/rules"
)

const sampleSource = `400. Draw
400.1. Drawing is the act of taking the top card of a deck into hand.
400.1.a. A player may only take the top card of their own deck.
500. Discard
500.1. A player discards a card by putting it into their graveyard.
A discarded card may later be drawn again if shuffled back.
`

func buildSearcher(t *testing.T) *Searcher {
	t.Helper()
	data, err := rules.NewParser().Parse(strings.NewReader(sampleSource), "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return NewSearcher(data)
}

func TestSearchRanksTitleAboveContent(t *testing.T) {
	s := buildSearcher(t)

	matches := s.Search("draw")
	if len(matches) < 2 {
		t.Fatalf("expected multiple matches, got %d", len(matches))
	}

	// "400. Draw" has a title hit and must outrank 500.1, whose only hit
	// ("drawn") sits in a continuation line of the body.
	if matches[0].Section.ID != "400" {
		t.Errorf("expected 400 ranked first, got %s", matches[0].Section.ID)
	}
	if last := matches[len(matches)-1]; last.Section.ID != "500.1" {
		t.Errorf("expected content-only match 500.1 last, got %s", last.Section.ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score at %d", i)
		}
	}
}

func TestSearchByNumber(t *testing.T) {
	s := buildSearcher(t)

	matches := s.Search("400.1.a")
	if len(matches) == 0 {
		t.Fatal("expected a match for the rule number")
	}
	if matches[0].Section.ID != "400.1.a" {
		t.Errorf("expected 400.1.a first, got %s", matches[0].Section.ID)
	}
	if matches[0].Matches[0].Field != FieldNumber {
		t.Errorf("expected a number-field match, got %s", matches[0].Matches[0].Field)
	}
}

func TestSearchOffsets(t *testing.T) {
	s := buildSearcher(t)

	matches := s.Search("graveyard")
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}

	m := matches[0]
	if m.Section.ID != "500.1" {
		t.Fatalf("expected 500.1, got %s", m.Section.ID)
	}
	var content *FieldMatch
	for i := range m.Matches {
		if m.Matches[i].Field == FieldContent {
			content = &m.Matches[i]
		}
	}
	if content == nil {
		t.Fatal("expected a content-field match")
	}
	got := m.Section.Content[content.Offset : content.Offset+content.Length]
	if !strings.EqualFold(got, "graveyard") {
		t.Errorf("offset points at %q", got)
	}
	if !strings.Contains(m.Snippet, "graveyard") {
		t.Errorf("snippet should contain the match: %q", m.Snippet)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := buildSearcher(t)

	if len(s.Search("DISCARD")) == 0 {
		t.Error("expected case-insensitive match")
	}
}

func TestSearchNoResults(t *testing.T) {
	s := buildSearcher(t)

	if got := s.Search("mulligan"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
	if got := s.Search("   "); got != nil {
		t.Errorf("expected no matches for blank query, got %v", got)
	}
}

func TestExtractSnippetEllipses(t *testing.T) {
	text := strings.Repeat("word ", 40) + "needle" + strings.Repeat(" word", 40)
	offset := strings.Index(text, "needle")

	snippet := extractSnippet(text, offset, len("needle"))
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Errorf("expected ellipses on both sides: %q", snippet)
	}
	if !strings.Contains(snippet, "needle") {
		t.Errorf("snippet lost the match: %q", snippet)
	}
}
