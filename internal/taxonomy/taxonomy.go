// Package taxonomy holds the weighted skill lists for every supported career category.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Category identifiers accepted in a candidate profile.
const (
	Frontend  = "frontend"
	Backend   = "backend"
	Fullstack = "fullstack"
	Mobile    = "mobile"
	Data      = "data"
	Marketing = "marketing"
	Design    = "design"
)

// Weight ranks how important a skill is for a category.
type Weight int

const (
	Bonus     Weight = 1
	Important Weight = 2
	Critical  Weight = 3
)

// Skill is a single weighted entry of a category.
type Skill struct {
	Name   string `yaml:"name" validate:"required"`
	Weight Weight `yaml:"weight" validate:"oneof=1 2 3"`
}

// Category is the file representation of one category.
type Category struct {
	ID     string  `yaml:"id" validate:"required"`
	Label  string  `yaml:"label"`
	Skills []Skill `yaml:"skills" validate:"dive"`
}

type document struct {
	Categories []Category `yaml:"categories" validate:"dive"`
}

// Taxonomy maps category identifiers to ordered weighted skill lists.
// It is never modified after construction and is safe for concurrent use.
type Taxonomy struct {
	order  []string
	labels map[string]string
	skills map[string][]Skill
}

//go:embed taxonomy.yaml
var defaultData []byte

var known = []string{Frontend, Backend, Fullstack, Mobile, Data, Marketing, Design}

var loadDefault = sync.OnceValue(func() *Taxonomy {
	t, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
})

// Default returns the compiled-in taxonomy.
func Default() *Taxonomy {
	return loadDefault()
}

// Known reports whether id is one of the supported category identifiers.
func Known(id string) bool {
	return slices.Contains(known, id)
}

// LoadFile reads a taxonomy override from a YAML file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file %q: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy file %q: %w", path, err)
	}

	return t, nil
}

// Parse decodes and validates a YAML taxonomy document.
// Category identifiers must be known and unique; weights must be 1, 2 or 3.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("validating taxonomy: %w", err)
	}

	t := &Taxonomy{
		order:  make([]string, 0, len(doc.Categories)),
		labels: make(map[string]string, len(doc.Categories)),
		skills: make(map[string][]Skill, len(doc.Categories)),
	}

	for _, c := range doc.Categories {
		if !Known(c.ID) {
			return nil, fmt.Errorf("unknown category %q", c.ID)
		}
		if _, dup := t.skills[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}

		t.order = append(t.order, c.ID)
		t.labels[c.ID] = c.Label
		t.skills[c.ID] = slices.Clone(c.Skills)
	}

	return t, nil
}

// Resolve returns a copy of the weighted skills of a category.
// Lookup is case-sensitive; unknown identifiers yield an empty list.
func (t *Taxonomy) Resolve(id string) []Skill {
	if t == nil {
		return []Skill{}
	}

	skills, ok := t.skills[id]
	if !ok {
		return []Skill{}
	}

	return slices.Clone(skills)
}

// Has reports whether the taxonomy defines the category.
func (t *Taxonomy) Has(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.skills[id]
	return ok
}

// Categories returns the category identifiers in file order.
func (t *Taxonomy) Categories() []string {
	if t == nil {
		return []string{}
	}
	return slices.Clone(t.order)
}

// Label returns the human readable category name, falling back to the identifier.
func (t *Taxonomy) Label(id string) string {
	if t != nil && t.labels[id] != "" {
		return t.labels[id]
	}
	return id
}

// TotalWeight sums the weights of a category.
func (t *Taxonomy) TotalWeight(id string) int {
	total := 0
	for _, s := range t.Resolve(id) {
		total += int(s.Weight)
	}
	return total
}
