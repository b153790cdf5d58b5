package rules

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	data := parseSample(t)

	raw, err := data.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	loaded, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if loaded.Version != data.Version || loaded.LastUpdated != data.LastUpdated {
		t.Errorf("metadata changed across round trip: %q / %q", loaded.Version, loaded.LastUpdated)
	}
	if !reflect.DeepEqual(loaded.Sections, data.Sections) {
		t.Error("sections changed across round trip")
	}

	// The index is rebuilt on load, not serialized.
	node := loaded.Node("400.1")
	if node == nil || node.ParentID != "400" {
		t.Errorf("index not rebuilt on load: %v", node)
	}
}

func TestFromJSONEmpty(t *testing.T) {
	if _, err := FromJSON(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := FromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed data")
	}
}

func TestSaveLoad(t *testing.T) {
	data := parseSample(t)
	path := filepath.Join(t.TempDir(), "rules-20260105.json")

	if err := Save(path, data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != data.Len() {
		t.Errorf("expected %d sections, got %d", data.Len(), loaded.Len())
	}
	if loaded.Node("100.1.a") == nil {
		t.Error("expected 100.1.a resolvable after load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
