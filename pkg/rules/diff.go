package rules

import (
	"fmt"
	"strings"
)

// VersionDiff describes how two parsed rulebook editions differ. The three
// identifier lists are mutually exclusive; together with the unchanged ids
// they partition the union of both editions.
type VersionDiff struct {
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`

	// Added and Modified follow the new document's order; Removed follows
	// the old document's order.
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// CompareVersions computes which section identifiers were added, modified,
// or removed between two already-built documents. A section counts as
// modified when its content, title, or ordered cross-reference list differs.
func CompareVersions(oldData, newData *RulesData) *VersionDiff {
	diff := &VersionDiff{
		OldVersion: oldData.Version,
		NewVersion: newData.Version,
		Added:      []string{},
		Modified:   []string{},
		Removed:    []string{},
	}

	seen := make(map[string]bool)
	for _, s := range newData.Sections {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		old := oldData.Node(s.ID)
		switch {
		case old == nil:
			diff.Added = append(diff.Added, s.ID)
		case sectionChanged(old, newData.Node(s.ID)):
			diff.Modified = append(diff.Modified, s.ID)
		}
	}

	seen = make(map[string]bool)
	for _, s := range oldData.Sections {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		if newData.Node(s.ID) == nil {
			diff.Removed = append(diff.Removed, s.ID)
		}
	}

	return diff
}

func sectionChanged(old, new *RuleSection) bool {
	if old.Content != new.Content || old.Title != new.Title {
		return true
	}
	if len(old.CrossRefs) != len(new.CrossRefs) {
		return true
	}
	for i := range old.CrossRefs {
		if old.CrossRefs[i] != new.CrossRefs[i] {
			return true
		}
	}
	return false
}

// Empty reports whether the diff contains no changes.
func (d *VersionDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// String returns a human-readable summary of the diff.
func (d *VersionDiff) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Rulebook diff: %s -> %s\n", d.OldVersion, d.NewVersion))
	sb.WriteString(fmt.Sprintf("  added: %d, modified: %d, removed: %d\n",
		len(d.Added), len(d.Modified), len(d.Removed)))

	writeList := func(label string, ids []string) {
		if len(ids) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", label))
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("  %s.\n", id))
		}
	}
	writeList("Added", d.Added)
	writeList("Modified", d.Modified)
	writeList("Removed", d.Removed)

	return sb.String()
}
