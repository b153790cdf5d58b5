package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultVersion is used when the source filename carries no recognizable
// edition marker.
const DefaultVersion = "unknown"

// headerScanLines bounds how far into the document provenance lines are
// recognized and skipped.
const headerScanLines = 5

// headerPrefixes mark provenance lines at the top of the source text that
// never open or continue a section.
var headerPrefixes = []string{
	"Comprehensive Rules",
	"Last Updated:",
	"Effective as of",
	"Introduction",
}

var (
	// versionPattern extracts the edition marker from a source filename,
	// e.g. "rules-20250815.txt" or "comprehensive-rules-2.3.txt".
	versionPattern = regexp.MustCompile(`(\d{8}|\d+(?:\.\d+)+)`)

	// lastUpdatedPattern finds the provenance date anywhere in the text.
	lastUpdatedPattern = regexp.MustCompile(`(?m)^Last Updated:\s*(.+?)\s*$`)
)

// Parser builds a RulesData document from numbered rulebook text. The zero
// value is not usable; construct with NewParser.
type Parser struct{}

// NewParser creates a rulebook parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a rulebook source file. The edition string is
// taken from the filename, falling back to DefaultVersion. A read failure is
// the only propagated error; malformed content never fails.
func (p *Parser) ParseFile(path string) (*RulesData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rulebook source: %w", err)
	}
	return p.ParseText(string(raw), VersionFromFilename(path))
}

// VersionFromFilename extracts the edition marker from a source filename,
// returning DefaultVersion when none is present.
func VersionFromFilename(path string) string {
	if m := versionPattern.FindStringSubmatch(filepath.Base(path)); m != nil {
		return m[1]
	}
	return DefaultVersion
}

// Parse scans rulebook text line by line, assembling sections, resolving
// each section's nearest ancestor, extracting cross-references, and building
// the identifier index. A source with no recognizable identifiers yields an
// empty document, not an error.
func (p *Parser) Parse(r io.Reader, version string) (*RulesData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	data := &RulesData{
		Version:  version,
		Sections: []*RuleSection{},
	}

	// numberToID records every identifier seen so far, keyed by its dotted
	// path. Parent resolution walks this table, so it follows the
	// document's observed hierarchy and tolerates skipped tiers.
	numberToID := make(map[string]string)

	var (
		current *RuleSection
		body    []string
		lineNo  int
	)

	finalize := func() {
		if current == nil {
			return
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		current.Content = content
		current.Title, _, _ = strings.Cut(content, "\n")
		current.CrossRefs = ExtractCrossReferences(content)
		data.Sections = append(data.Sections, current)
		current = nil
		body = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if lineNo <= headerScanLines && isHeaderLine(line) {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Preserve intentional paragraph breaks inside a body.
			if current != nil {
				body = append(body, "")
			}
			continue
		}

		level := DetectLevel(trimmed)
		if level == NotARule {
			if current != nil {
				body = append(body, trimmed)
			}
			continue
		}

		finalize()

		id := ExtractIdentifier(trimmed)
		current = &RuleSection{
			ID:       id,
			Number:   id + ".",
			Level:    level,
			ParentID: resolveParent(id, numberToID),
			Children: []string{},
			Version:  version,
		}
		numberToID[id] = id
		body = append(body, ExtractHeadingText(trimmed))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rulebook source: %w", err)
	}
	finalize()

	linkChildren(data.Sections)
	for _, id := range data.buildIndex() {
		data.Warnings = append(data.Warnings,
			fmt.Sprintf("duplicate identifier %s: later section shadows the earlier one in the index", id))
	}

	return data, nil
}

// ParseText parses rulebook text held in memory. The LastUpdated field is
// extracted from the text itself; absence of a marker leaves it empty.
func (p *Parser) ParseText(text, version string) (*RulesData, error) {
	data, err := p.Parse(strings.NewReader(text), version)
	if err != nil {
		return nil, err
	}
	data.LastUpdated = ExtractLastUpdated(text)
	return data, nil
}

// ExtractLastUpdated returns the value of the first "Last Updated:" line in
// the raw text, or "" when the text carries none.
func ExtractLastUpdated(text string) string {
	if m := lastUpdatedPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// resolveParent strips trailing segments off the identifier until a shorter
// prefix is found in the observed-identifier table. The first match is the
// parent; no match means the section is top-level.
func resolveParent(id string, numberToID map[string]string) string {
	prefix := id
	for {
		i := strings.LastIndex(prefix, ".")
		if i < 0 {
			return ""
		}
		prefix = prefix[:i]
		if parent, ok := numberToID[prefix]; ok {
			return parent
		}
	}
}

// linkChildren fills each section's Children list from the finalized
// sections, preserving document order.
func linkChildren(sections []*RuleSection) {
	byID := make(map[string]*RuleSection, len(sections))
	for _, s := range sections {
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = s
		}
	}
	for _, s := range sections {
		if s.ParentID == "" {
			continue
		}
		if parent := byID[s.ParentID]; parent != nil {
			parent.Children = append(parent.Children, s.ID)
		}
	}
}

func isHeaderLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
