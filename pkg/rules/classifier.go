package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// NotARule is the level reported for lines that do not start a rule section.
const NotARule = -1

// segmentKind distinguishes the two token shapes an identifier alternates
// between after its leading 3-digit group.
type segmentKind int

const (
	segmentNumeric segmentKind = iota
	segmentAlpha
)

// segment is one dotted component of a rule identifier.
type segment struct {
	kind  segmentKind
	value string
}

// parseIdentifier splits a dotted identifier (without trailing period) into
// typed segments and reports whether it matches the rule grammar: a 3-digit
// group followed by alternating numeric and lowercase-alpha segments.
func parseIdentifier(id string) ([]segment, bool) {
	parts := strings.Split(id, ".")
	segments := make([]segment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, false
		}
		switch {
		case i == 0:
			if len(part) != 3 || !isDigits(part) {
				return nil, false
			}
			segments = append(segments, segment{segmentNumeric, part})
		case i%2 == 1:
			if !isDigits(part) {
				return nil, false
			}
			segments = append(segments, segment{segmentNumeric, part})
		default:
			if !isLowerAlpha(part) {
				return nil, false
			}
			segments = append(segments, segment{segmentAlpha, part})
		}
	}
	return segments, true
}

// splitRuleLine separates a rule-start line into its identifier and heading
// text. The identifier must form the entire first whitespace-delimited token,
// terminated by a period. Returns ("", "") for continuation lines.
func splitRuleLine(line string) (id, heading string) {
	trimmed := strings.TrimSpace(line)
	token := trimmed
	rest := ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		token = trimmed[:i]
		rest = strings.TrimSpace(trimmed[i:])
	}
	if !strings.HasSuffix(token, ".") {
		return "", ""
	}
	candidate := strings.TrimSuffix(token, ".")
	if _, ok := parseIdentifier(candidate); !ok {
		return "", ""
	}
	return candidate, rest
}

// DetectLevel classifies one line of source text. It returns the hierarchy
// depth (0 for a top-level section) when the line starts a new rule section,
// or NotARule for continuation and body text. Classification is greedy: the
// longest identifier the grammar admits wins, so "103.1. Text" is level 1
// even though a level-0 pattern partially matches.
func DetectLevel(line string) int {
	id, _ := splitRuleLine(line)
	if id == "" {
		return NotARule
	}
	segments, _ := parseIdentifier(id)
	return len(segments) - 1
}

// ExtractIdentifier returns the dotted identifier that starts the line,
// without its trailing period, or "" if the line has no recognized
// identifier prefix.
func ExtractIdentifier(line string) string {
	id, _ := splitRuleLine(line)
	return id
}

// ExtractHeadingText returns everything following the identifier delimiter,
// trimmed. Lines without a recognized identifier are returned whole, trimmed.
func ExtractHeadingText(line string) string {
	id, heading := splitRuleLine(line)
	if id == "" {
		return strings.TrimSpace(line)
	}
	return heading
}

// crossRefPattern matches textual references like "rule 346." or
// "See rule 103.1.a." The "rule" keyword is case-insensitive; the identifier
// itself is not, so uppercase segments never produce false positives.
var crossRefPattern = regexp.MustCompile(`\b(?i:rule)\s+(\d{3}(?:\.(?:\d+|[a-z]+))*)\.`)

// ExtractCrossReferences scans body text for rule references and returns
// each referenced identifier once, in first-occurrence order. The scan is
// best effort: unrecognized phrasings are missed, but every returned
// identifier is well formed.
func ExtractCrossReferences(text string) []string {
	matches := crossRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var refs []string
	for _, m := range matches {
		id := m[1]
		if _, ok := parseIdentifier(id); !ok {
			continue
		}
		if !seen[id] {
			seen[id] = true
			refs = append(refs, id)
		}
	}
	return refs
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return len(s) > 0
}
