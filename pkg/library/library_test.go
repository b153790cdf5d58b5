package library

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	return path
}

func TestIngestAndLoad(t *testing.T) {
	tmp := t.TempDir()
	lib, err := Open(filepath.Join(tmp, "library"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	source := writeSource(t, tmp, "rules-1.0.txt", "100. General\n100.1. First rule.\n")
	data, err := lib.Ingest(source)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if data.Version != "1.0" {
		t.Errorf("expected version 1.0 from filename, got %q", data.Version)
	}

	loaded, err := lib.Load("1.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Node("100.1") == nil {
		t.Error("expected 100.1 resolvable in stored edition")
	}
}

func TestEditionsOrder(t *testing.T) {
	tmp := t.TempDir()
	lib, err := Open(filepath.Join(tmp, "library"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, name := range []string{"rules-2.10.txt", "rules-1.9.txt", "rules-2.2.txt"} {
		if _, err := lib.Ingest(writeSource(t, tmp, name, "100. General\n")); err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
	}

	editions, err := lib.Editions()
	if err != nil {
		t.Fatalf("Editions: %v", err)
	}
	if !reflect.DeepEqual(editions, []string{"1.9", "2.2", "2.10"}) {
		t.Errorf("unexpected edition order: %v", editions)
	}

	latest, err := lib.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Version != "2.10" {
		t.Errorf("expected latest 2.10, got %q", latest.Version)
	}
}

func TestLibraryDiff(t *testing.T) {
	tmp := t.TempDir()
	lib, err := Open(filepath.Join(tmp, "library"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := lib.Ingest(writeSource(t, tmp, "rules-1.0.txt", "100. General\n200. Old.\n")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := lib.Ingest(writeSource(t, tmp, "rules-2.0.txt", "100. General\n300. New.\n")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	diff, err := lib.Diff("1.0", "2.0")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !reflect.DeepEqual(diff.Added, []string{"300"}) || !reflect.DeepEqual(diff.Removed, []string{"200"}) {
		t.Errorf("unexpected diff: %+v", diff)
	}
}

func TestLatestEmptyLibrary(t *testing.T) {
	lib, err := Open(filepath.Join(t.TempDir(), "library"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := lib.Latest(); err == nil {
		t.Error("expected error for empty library")
	}
}
