// Package rules parses a flat, numbered rulebook text into a navigable tree
// of rule sections with parent/child links, cross-reference lists, and an
// identifier index.
package rules

// RuleSection is one identified, addressable unit of rulebook text: a
// top-level section, a rule, a sub-rule, or a deeper detail.
type RuleSection struct {
	// ID is the canonical dotted identifier, e.g. "103.1.b.2". It is unique
	// across a document and doubles as the section's URL slug.
	ID string `json:"id"`

	// Number is the display form of the identifier: ID plus a trailing
	// period, e.g. "103.1.b.2.".
	Number string `json:"number"`

	// Title is the first line of the section body. For single-line sections
	// it equals the full content.
	Title string `json:"title"`

	// Content is the full body text, paragraph breaks preserved.
	Content string `json:"content"`

	// Level is the structural depth: 0 for a top-level section, increasing
	// by one per identifier segment.
	Level int `json:"level"`

	// ParentID is the identifier of the nearest ancestor section present in
	// the document, empty for top-level sections.
	ParentID string `json:"parent_id,omitempty"`

	// Children lists direct child identifiers in document order.
	Children []string `json:"children"`

	// CrossRefs lists identifiers this section's content textually
	// references. Entries are not guaranteed to resolve.
	CrossRefs []string `json:"cross_refs,omitempty"`

	// Version is the rulebook edition this section belongs to.
	Version string `json:"version"`
}

// RulesData is the complete parse result for one rulebook edition. It is
// immutable after construction and safe for concurrent readers.
type RulesData struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"last_updated,omitempty"`
	Sections    []*RuleSection `json:"sections"`

	// Warnings contains non-fatal problems observed during the build, such
	// as duplicate identifiers.
	Warnings []string `json:"warnings,omitempty"`

	index map[string]*RuleSection
}

// buildIndex populates the id lookup table and returns the identifiers that
// appeared more than once in Sections. A later section overwrites an earlier
// one in the index while both remain in Sections.
func (d *RulesData) buildIndex() []string {
	var duplicates []string
	d.index = make(map[string]*RuleSection, len(d.Sections))
	for _, s := range d.Sections {
		if _, ok := d.index[s.ID]; ok {
			duplicates = append(duplicates, s.ID)
		}
		d.index[s.ID] = s
	}
	return duplicates
}

// Node returns the section with the given identifier, or nil if the document
// contains no such section.
func (d *RulesData) Node(id string) *RuleSection {
	return d.index[id]
}

// TopLevel returns all level-0 sections in document order.
func (d *RulesData) TopLevel() []*RuleSection {
	var top []*RuleSection
	for _, s := range d.Sections {
		if s.Level == 0 {
			top = append(top, s)
		}
	}
	return top
}

// ChildNodes resolves the children of the given section, silently dropping
// any identifier that does not resolve.
func (d *RulesData) ChildNodes(id string) []*RuleSection {
	parent := d.index[id]
	if parent == nil {
		return nil
	}
	children := make([]*RuleSection, 0, len(parent.Children))
	for _, childID := range parent.Children {
		if child := d.index[childID]; child != nil {
			children = append(children, child)
		}
	}
	return children
}

// Referencing returns the sections whose cross-references include the given
// identifier, in document order.
func (d *RulesData) Referencing(id string) []*RuleSection {
	var refs []*RuleSection
	for _, s := range d.Sections {
		for _, ref := range s.CrossRefs {
			if ref == id {
				refs = append(refs, s)
				break
			}
		}
	}
	return refs
}

// Len returns the number of sections in the document.
func (d *RulesData) Len() int {
	return len(d.Sections)
}
