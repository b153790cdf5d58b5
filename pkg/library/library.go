// Package library manages a directory of ingested rulebook editions, one
// parsed JSON document per edition.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/coolbeans/rulebook/pkg/rules"
)

const documentExt = ".json"

// Library is a persistent collection of parsed rulebook editions.
type Library struct {
	dir    string
	parser *rules.Parser
}

// Open prepares a library rooted at dir, creating the directory if needed.
func Open(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}
	return &Library{dir: dir, parser: rules.NewParser()}, nil
}

// Ingest parses a rulebook source file and stores the result under the
// edition extracted from the filename. An existing edition with the same
// version is overwritten.
func (l *Library) Ingest(sourcePath string) (*rules.RulesData, error) {
	data, err := l.parser.ParseFile(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := rules.Save(l.documentPath(data.Version), data); err != nil {
		return nil, fmt.Errorf("storing edition %s: %w", data.Version, err)
	}
	return data, nil
}

// Editions lists the stored edition labels, oldest first.
func (l *Library) Editions() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading library directory: %w", err)
	}

	var editions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, documentExt) {
			continue
		}
		editions = append(editions, strings.TrimSuffix(name, documentExt))
	}
	sort.Slice(editions, func(i, j int) bool {
		return compareVersions(editions[i], editions[j]) < 0
	})
	return editions, nil
}

// Load reads one stored edition.
func (l *Library) Load(version string) (*rules.RulesData, error) {
	return rules.Load(l.documentPath(version))
}

// Latest returns the most recent stored edition.
func (l *Library) Latest() (*rules.RulesData, error) {
	editions, err := l.Editions()
	if err != nil {
		return nil, err
	}
	if len(editions) == 0 {
		return nil, fmt.Errorf("library %s holds no editions", l.dir)
	}
	return l.Load(editions[len(editions)-1])
}

// Diff compares two stored editions by version label.
func (l *Library) Diff(oldVersion, newVersion string) (*rules.VersionDiff, error) {
	oldData, err := l.Load(oldVersion)
	if err != nil {
		return nil, err
	}
	newData, err := l.Load(newVersion)
	if err != nil {
		return nil, err
	}
	return rules.CompareVersions(oldData, newData), nil
}

func (l *Library) documentPath(version string) string {
	return filepath.Join(l.dir, version+documentExt)
}

// compareVersions orders edition labels segment-wise, numerically where both
// segments are numbers, lexically otherwise. "2.10" sorts after "2.9".
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}
