// Package validate checks parsed rulebook documents: structural invariants
// every document must hold, and edition-specific expectations loaded from
// YAML profiles.
package validate

import (
	"fmt"
	"strings"

	"github.com/coolbeans/rulebook/pkg/rules"
)

// Check is one validation outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the checks run against one document.
type Report struct {
	Profile string  `json:"profile,omitempty"`
	Version string  `json:"version"`
	Checks  []Check `json:"checks"`
}

// Passed reports whether every check succeeded.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// String formats the report for terminal output.
func (r *Report) String() string {
	var sb strings.Builder
	if r.Profile != "" {
		sb.WriteString(fmt.Sprintf("Profile: %s\n", r.Profile))
	}
	sb.WriteString(fmt.Sprintf("Edition: %s\n", r.Version))
	for _, c := range r.Checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s", mark, c.Name))
		if c.Detail != "" {
			sb.WriteString(": " + c.Detail)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Report) add(name string, passed bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Detail: detail})
}

// Structural verifies the invariants every well-built document holds:
// index completeness, parent/children symmetry, strict level growth along
// parent edges, and identifier round-tripping.
func Structural(d *rules.RulesData) *Report {
	report := &Report{Version: d.Version}

	missing := 0
	for _, s := range d.Sections {
		if node := d.Node(s.ID); node == nil || node.ID != s.ID {
			missing++
		}
	}
	report.add("index completeness", missing == 0,
		fmt.Sprintf("%d of %d sections indexed", len(d.Sections)-missing, len(d.Sections)))

	badParents := 0
	badLevels := 0
	for _, s := range d.Sections {
		if s.ParentID == "" {
			continue
		}
		parent := d.Node(s.ParentID)
		if parent == nil {
			badParents++
			continue
		}
		if parent.Level >= s.Level {
			badLevels++
		}
		linked := false
		for _, c := range parent.Children {
			if c == s.ID {
				linked = true
			}
		}
		if !linked {
			badParents++
		}
	}
	report.add("parent/children symmetry", badParents == 0,
		fmt.Sprintf("%d broken links", badParents))
	report.add("level monotonicity", badLevels == 0,
		fmt.Sprintf("%d sections at or above their parent's level", badLevels))

	badIDs := 0
	for _, s := range d.Sections {
		if rules.ExtractIdentifier(s.ID+". ") != s.ID {
			badIDs++
		}
	}
	report.add("identifier round trip", badIDs == 0,
		fmt.Sprintf("%d identifiers fail to re-parse", badIDs))

	report.add("no build warnings", len(d.Warnings) == 0,
		strings.Join(d.Warnings, "; "))

	return report
}
