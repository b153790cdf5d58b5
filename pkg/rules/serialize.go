package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// ToJSON serializes the document. The identifier index is derived state and
// is rebuilt on load rather than serialized.
func (d *RulesData) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromJSON reconstructs a document from its JSON form and rebuilds the
// identifier index.
func FromJSON(data []byte) (*RulesData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document data")
	}

	var doc RulesData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling rules document: %w", err)
	}
	if doc.Sections == nil {
		doc.Sections = []*RuleSection{}
	}
	doc.buildIndex()

	return &doc, nil
}

// Save writes the document to path as indented JSON.
func Save(path string, d *RulesData) error {
	data, err := d.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing rules document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing rules document: %w", err)
	}
	return nil
}

// Load reads a document previously written by Save.
func Load(path string) (*RulesData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules document: %w", err)
	}
	return FromJSON(data)
}
