// Package learning points at courses, videos and docs for skills a candidate is missing.
package learning

import (
	_ "embed"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	PlatformCoursera      = "Coursera"
	PlatformUdemy         = "Udemy"
	PlatformYouTube       = "YouTube"
	PlatformFreeCodeCamp  = "FreeCodeCamp"
	PlatformDocumentation = "Documentation"
)

const (
	TypeCourse   = "Course"
	TypeVideo    = "Video"
	TypeTutorial = "Tutorial"
	TypeDocs     = "Docs"
)

// Resource is a single learning link.
type Resource struct {
	Title    string `yaml:"title" json:"title" validate:"required"`
	Platform string `yaml:"platform" json:"platform" validate:"oneof=Coursera Udemy YouTube FreeCodeCamp Documentation"`
	URL      string `yaml:"url" json:"url" validate:"required,url"`
	Type     string `yaml:"type" json:"type" validate:"oneof=Course Video Tutorial Docs"`
	Free     bool   `yaml:"free" json:"free"`
}

// Recommendation groups the resources found for one skill.
type Recommendation struct {
	Skill     string     `json:"skill"`
	Resources []Resource `json:"resources"`
}

type entry struct {
	Skill     string     `yaml:"skill" validate:"required,lowercase"`
	Resources []Resource `yaml:"resources" validate:"required,dive"`
}

type catalog struct {
	Skills []entry `yaml:"skills" validate:"dive"`
}

//go:embed catalog.yaml
var catalogData []byte

var loadCatalog = sync.OnceValue(func() catalog {
	c, err := parse(catalogData)
	if err != nil {
		panic(fmt.Sprintf("embedded learning catalog is invalid: %v", err))
	}
	return c
})

func parse(data []byte) (catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return catalog{}, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return catalog{}, fmt.Errorf("validating catalog: %w", err)
	}
	return c, nil
}

// ForSkill returns the resources for a skill. An exact entry wins, then the first
// entry whose name contains the skill or is contained in it. Unknown skills get
// search links. Blank skills get nothing.
func ForSkill(skill string) []Resource {
	skill = strings.TrimSpace(skill)
	key := strings.ToLower(skill)
	if key == "" {
		return nil
	}

	entries := loadCatalog().Skills
	for _, e := range entries {
		if e.Skill == key {
			return slices.Clone(e.Resources)
		}
	}
	for _, e := range entries {
		if strings.Contains(key, e.Skill) || strings.Contains(e.Skill, key) {
			return slices.Clone(e.Resources)
		}
	}

	return fallback(skill)
}

func fallback(skill string) []Resource {
	query := url.QueryEscape(skill)
	return []Resource{
		{
			Title:    "Learn " + skill,
			Platform: PlatformYouTube,
			URL:      "https://www.youtube.com/results?search_query=learn+" + query + "+tutorial",
			Type:     TypeVideo,
			Free:     true,
		},
		{
			Title:    skill + " Courses",
			Platform: PlatformCoursera,
			URL:      "https://www.coursera.org/search?query=" + query,
			Type:     TypeCourse,
			Free:     false,
		},
	}
}

// ForSkills returns one recommendation per skill, in order.
func ForSkills(skills []string) []Recommendation {
	out := make([]Recommendation, 0, len(skills))
	for _, s := range skills {
		out = append(out, Recommendation{Skill: s, Resources: ForSkill(s)})
	}
	return out
}

// BestFree returns the first free resource for a skill.
func BestFree(skill string) (Resource, bool) {
	for _, r := range ForSkill(skill) {
		if r.Free {
			return r, true
		}
	}
	return Resource{}, false
}
