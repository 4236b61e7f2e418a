package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NameTable holds localized names keyed by catalog id. It is loaded from a
// YAML file of the form:
//
//	locale: ko
//	names:
//	  1: 이상해씨
//	  25: 피카츄
type NameTable struct {
	Locale string         `yaml:"locale"`
	Names  map[int]string `yaml:"names"`
}

func LoadNameTable(path string) (*NameTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read name table: %w", err)
	}

	var table NameTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse name table %s: %w", path, err)
	}
	if table.Names == nil {
		table.Names = map[int]string{}
	}
	return &table, nil
}

// Lookup is safe on a nil table.
func (t *NameTable) Lookup(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.Names[id]
	return name, ok
}
