package rules

import (
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source, version string) *RulesData {
	t.Helper()
	data, err := NewParser().Parse(strings.NewReader(source), version)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return data
}

func TestCompareVersions(t *testing.T) {
	oldSource := `100. General
100.1. These rules apply to two or more players.
200. Parts of the Game
300. Old Concept
`
	newSource := `100. General
100.1. These rules apply to any number of players.
200. Parts of the Game
400. New Concept
`
	oldData := mustParse(t, oldSource, "1.0")
	newData := mustParse(t, newSource, "2.0")

	diff := CompareVersions(oldData, newData)

	if diff.OldVersion != "1.0" || diff.NewVersion != "2.0" {
		t.Errorf("unexpected version labels: %q -> %q", diff.OldVersion, diff.NewVersion)
	}
	if !reflect.DeepEqual(diff.Added, []string{"400"}) {
		t.Errorf("expected added [400], got %v", diff.Added)
	}
	if !reflect.DeepEqual(diff.Modified, []string{"100.1"}) {
		t.Errorf("expected modified [100.1], got %v", diff.Modified)
	}
	if !reflect.DeepEqual(diff.Removed, []string{"300"}) {
		t.Errorf("expected removed [300], got %v", diff.Removed)
	}
}

func TestCompareVersionsCrossRefChange(t *testing.T) {
	oldData := mustParse(t, "100. A rule. See rule 200.\n200. Target.\n", "1.0")
	newData := mustParse(t, "100. A rule. See rule 300.\n200. Target.\n300. Target.\n", "2.0")

	diff := CompareVersions(oldData, newData)

	found := false
	for _, id := range diff.Modified {
		if id == "100" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 100 marked modified for cross-ref change, got %v", diff.Modified)
	}
}

func TestCompareVersionsPartition(t *testing.T) {
	oldData := mustParse(t, sampleOld, "1.0")
	newData := mustParse(t, sampleNew, "2.0")

	diff := CompareVersions(oldData, newData)

	membership := make(map[string]string)
	record := func(ids []string, bucket string) {
		for _, id := range ids {
			if prev, ok := membership[id]; ok {
				t.Errorf("id %s in both %s and %s", id, prev, bucket)
			}
			membership[id] = bucket
		}
	}
	record(diff.Added, "added")
	record(diff.Modified, "modified")
	record(diff.Removed, "removed")

	// Every id in both editions and not marked modified must be identical.
	for _, s := range oldData.Sections {
		other := newData.Node(s.ID)
		if other == nil || membership[s.ID] != "" {
			continue
		}
		if s.Content != other.Content || s.Title != other.Title ||
			!reflect.DeepEqual(s.CrossRefs, other.CrossRefs) {
			t.Errorf("id %s differs but was not marked modified", s.ID)
		}
	}
}

const sampleOld = `100. General
100.1. Two players minimum.
200. Zones
200.1. The battlefield is shared. See rule 100.
300. Retired
`

const sampleNew = `100. General
100.1. Two players minimum.
200. Zones
200.1. The battlefield is shared by all players. See rule 100.
400. Fresh
`

func TestCompareVersionsIdentical(t *testing.T) {
	a := mustParse(t, sampleOld, "1.0")
	b := mustParse(t, sampleOld, "1.1")

	diff := CompareVersions(a, b)
	if !diff.Empty() {
		t.Errorf("expected empty diff for identical sources, got %s", diff)
	}
}

func TestVersionDiffString(t *testing.T) {
	diff := &VersionDiff{
		OldVersion: "1.0",
		NewVersion: "2.0",
		Added:      []string{"400"},
		Modified:   []string{"100.1"},
		Removed:    []string{"300"},
	}

	out := diff.String()
	for _, want := range []string{"1.0 -> 2.0", "400.", "100.1.", "300."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q:\n%s", want, out)
		}
	}
}
