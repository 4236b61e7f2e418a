package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/generations.yaml
var generationsYAML []byte

//go:embed data/types.yaml
var typesYAML []byte

// IDRange is an inclusive range of catalog ids.
type IDRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

func (r IDRange) Contains(id int) bool {
	return id >= r.First && id <= r.Last
}

type generationRow struct {
	Generation int `yaml:"generation"`
	IDRange    `yaml:",inline"`
}

// GenerationTable maps generation numbers to id ranges. It is read-only after
// construction.
type GenerationTable struct {
	ranges map[int]IDRange
	order  []int
}

func ParseGenerationTable(data []byte) (*GenerationTable, error) {
	var doc struct {
		Generations []generationRow `yaml:"generations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse generation table: %w", err)
	}

	table := &GenerationTable{ranges: make(map[int]IDRange, len(doc.Generations))}
	for _, row := range doc.Generations {
		if row.First <= 0 || row.Last < row.First {
			return nil, fmt.Errorf("generation %d has invalid range %d-%d", row.Generation, row.First, row.Last)
		}
		if _, dup := table.ranges[row.Generation]; dup {
			return nil, fmt.Errorf("generation %d listed twice", row.Generation)
		}
		table.ranges[row.Generation] = row.IDRange
		table.order = append(table.order, row.Generation)
	}
	sort.Ints(table.order)
	return table, nil
}

// Range returns the id range of a generation.
func (g *GenerationTable) Range(generation int) (IDRange, bool) {
	r, ok := g.ranges[generation]
	return r, ok
}

// GenerationOf derives an item's generation from its id, 0 when unknown.
func (g *GenerationTable) GenerationOf(id int) int {
	for _, gen := range g.order {
		if g.ranges[gen].Contains(id) {
			return gen
		}
	}
	return 0
}

// Resolve turns a generation filter value into an id range. ok is false when
// the filter places no restriction ("all", empty, or a generation the table
// does not know). A value that is not a number is an error.
func (g *GenerationTable) Resolve(filter string) (r IDRange, ok bool, err error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "all") {
		return IDRange{}, false, nil
	}
	gen, err := strconv.Atoi(filter)
	if err != nil {
		return IDRange{}, false, fmt.Errorf("generation %q is not a number: %w", filter, err)
	}
	r, ok = g.Range(gen)
	return r, ok, nil
}

func (g *GenerationTable) Generations() []int {
	out := make([]int, len(g.order))
	copy(out, g.order)
	return out
}

// TypeTable canonicalizes type tags and their localized names.
type TypeTable struct {
	canonical map[string]string
	names     map[string]map[string]string
}

func ParseTypeTable(data []byte) (*TypeTable, error) {
	var doc struct {
		Types []struct {
			Tag   string            `yaml:"tag"`
			Names map[string]string `yaml:"names"`
		} `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse type table: %w", err)
	}

	table := &TypeTable{
		canonical: make(map[string]string),
		names:     make(map[string]map[string]string),
	}
	for _, row := range doc.Types {
		tag := strings.ToLower(strings.TrimSpace(row.Tag))
		if tag == "" {
			return nil, fmt.Errorf("type table has an entry without a tag")
		}
		table.canonical[tag] = tag
		table.names[tag] = row.Names
		for _, name := range row.Names {
			table.canonical[strings.ToLower(name)] = tag
		}
	}
	return table, nil
}

// Canonical maps a tag or any of its localized names to the stored tag.
// Unknown values are returned lower-cased.
func (t *TypeTable) Canonical(tag string) string {
	key := strings.ToLower(strings.TrimSpace(tag))
	if c, ok := t.canonical[key]; ok {
		return c
	}
	return key
}

// Localize returns the display name of tag in locale, or the tag itself.
func (t *TypeTable) Localize(tag, locale string) string {
	if names, ok := t.names[t.Canonical(tag)]; ok {
		if name, ok := names[locale]; ok {
			return name
		}
	}
	return tag
}

var (
	defaultGenerations = mustParse(ParseGenerationTable, generationsYAML)
	defaultTypes       = mustParse(ParseTypeTable, typesYAML)
)

func mustParse[T any](parse func([]byte) (T, error), data []byte) T {
	v, err := parse(data)
	if err != nil {
		panic(err)
	}
	return v
}

// Generations returns the built-in generation table.
func Generations() *GenerationTable { return defaultGenerations }

// Types returns the built-in type table.
func Types() *TypeTable { return defaultTypes }
