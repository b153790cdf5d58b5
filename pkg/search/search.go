// Package search provides ranked text search over a parsed rulebook.
package search

import (
	"sort"
	"strings"

	"github.com/coolbeans/rulebook/pkg/rules"
)

// Field names a searchable section field.
type Field string

const (
	FieldNumber  Field = "number"
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// Per-occurrence score weights. A hit on the rule number outranks a title
// hit, which outranks a body hit.
const (
	numberWeight  = 50
	titleWeight   = 20
	contentWeight = 5
)

// snippetContext is the number of characters of context kept on each side of
// the first content match.
const snippetContext = 50

// FieldMatch records one occurrence of the query inside a section field,
// with character offsets into that field.
type FieldMatch struct {
	Field  Field `json:"field"`
	Offset int   `json:"offset"`
	Length int   `json:"length"`
}

// Match is one search result.
type Match struct {
	Section *rules.RuleSection `json:"section"`

	// Score is the relevance score, higher is better.
	Score int `json:"score"`

	// Matches lists every occurrence found, number and title fields first.
	Matches []FieldMatch `json:"matches"`

	// Snippet shows the first content match in context, empty when the
	// query only hit the number or title.
	Snippet string `json:"snippet,omitempty"`
}

// Searcher runs case-insensitive queries over one parsed document. It holds
// no mutable state and is safe for concurrent use.
type Searcher struct {
	data *rules.RulesData
}

// NewSearcher creates a searcher over the given document.
func NewSearcher(data *rules.RulesData) *Searcher {
	return &Searcher{data: data}
}

// Search returns every section matching the query, ranked by weighted field
// score and, between equal scores, by document order. An empty query yields
// no results.
func (s *Searcher) Search(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)

	var matches []Match
	for _, section := range s.data.Sections {
		m := scoreSection(section, needle)
		if m.Score > 0 {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

func scoreSection(section *rules.RuleSection, needle string) Match {
	m := Match{Section: section}

	collect := func(field Field, text string, weight int) []FieldMatch {
		var hits []FieldMatch
		lower := strings.ToLower(text)
		for from := 0; ; {
			i := strings.Index(lower[from:], needle)
			if i < 0 {
				break
			}
			hits = append(hits, FieldMatch{Field: field, Offset: from + i, Length: len(needle)})
			from += i + len(needle)
		}
		m.Score += len(hits) * weight
		return hits
	}

	m.Matches = append(m.Matches, collect(FieldNumber, section.Number, numberWeight)...)
	m.Matches = append(m.Matches, collect(FieldTitle, section.Title, titleWeight)...)

	contentHits := collect(FieldContent, section.Content, contentWeight)
	m.Matches = append(m.Matches, contentHits...)
	if len(contentHits) > 0 {
		m.Snippet = extractSnippet(section.Content, contentHits[0].Offset, contentHits[0].Length)
	}

	return m
}

// extractSnippet cuts a context window around one match, snapping the cut
// points outward past partial words and marking truncation with ellipses.
func extractSnippet(text string, offset, length int) string {
	start := offset - snippetContext
	if start < 0 {
		start = 0
	}
	end := offset + length + snippetContext
	if end > len(text) {
		end = len(text)
	}

	for start > 0 && text[start-1] != ' ' && text[start-1] != '\n' {
		start--
	}
	for end < len(text) && text[end] != ' ' && text[end] != '\n' {
		end++
	}

	snippet := strings.TrimSpace(text[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}
