package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/rulebook/pkg/rules"
)

// Profile describes what a particular rulebook edition is expected to look
// like once parsed. Profiles live in YAML files maintained alongside the
// source texts.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Expected Expected `yaml:"expected"`

	// RequiredIDs lists identifiers that must be present, typically the
	// well-known top-level sections of the game's rulebook.
	RequiredIDs []string `yaml:"required_ids,omitempty"`

	Thresholds Thresholds `yaml:"thresholds,omitempty"`
}

// Expected holds section-count expectations. Zero values disable a check.
type Expected struct {
	// MinSections is the minimum total number of sections.
	MinSections int `yaml:"min_sections,omitempty"`

	// TopLevel is the exact number of level-0 sections, when known.
	TopLevel int `yaml:"top_level,omitempty"`

	// MaxLevel is the deepest level the grammar should produce.
	MaxLevel int `yaml:"max_level,omitempty"`
}

// Thresholds holds quality ratios in the range 0..1.
type Thresholds struct {
	// CrossRefResolution is the minimum fraction of cross-references that
	// must resolve to a section in the same document. Dangling references
	// are tolerated by the parser; a low ratio signals a bad source text.
	CrossRefResolution float64 `yaml:"cross_ref_resolution,omitempty"`
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile parses YAML profile data.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if profile.Name == "" {
		return nil, fmt.Errorf("profile has no name")
	}
	return &profile, nil
}

// Validate runs the structural checks plus the profile's expectations
// against a parsed document.
func (p *Profile) Validate(d *rules.RulesData) *Report {
	report := Structural(d)
	report.Profile = p.Name

	if p.Expected.MinSections > 0 {
		report.add("minimum section count", d.Len() >= p.Expected.MinSections,
			fmt.Sprintf("%d sections, expected at least %d", d.Len(), p.Expected.MinSections))
	}
	if p.Expected.TopLevel > 0 {
		top := len(d.TopLevel())
		report.add("top-level section count", top == p.Expected.TopLevel,
			fmt.Sprintf("%d top-level sections, expected %d", top, p.Expected.TopLevel))
	}
	if p.Expected.MaxLevel > 0 {
		deepest := 0
		for _, s := range d.Sections {
			if s.Level > deepest {
				deepest = s.Level
			}
		}
		report.add("maximum depth", deepest <= p.Expected.MaxLevel,
			fmt.Sprintf("deepest level %d, expected at most %d", deepest, p.Expected.MaxLevel))
	}

	for _, id := range p.RequiredIDs {
		report.add("required id "+id, d.Node(id) != nil, "")
	}

	if p.Thresholds.CrossRefResolution > 0 {
		total, resolved := 0, 0
		for _, s := range d.Sections {
			for _, ref := range s.CrossRefs {
				total++
				if d.Node(ref) != nil {
					resolved++
				}
			}
		}
		ratio := 1.0
		if total > 0 {
			ratio = float64(resolved) / float64(total)
		}
		report.add("cross-reference resolution", ratio >= p.Thresholds.CrossRefResolution,
			fmt.Sprintf("%.2f resolved, threshold %.2f", ratio, p.Thresholds.CrossRefResolution))
	}

	return report
}
