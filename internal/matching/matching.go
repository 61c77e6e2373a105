// Package matching scores a candidate profile against career categories and job postings.
//
// Every function here is pure: results depend only on the arguments and the
// taxonomy the Engine was built with, so identical input always produces an
// identical Result and calls may run concurrently.
package matching

import (
	"math"
	"strings"

	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/taxonomy"
)

// Composite weights. These are fixed for output compatibility.
const (
	SkillFactor      = 0.6
	ExperienceFactor = 0.2
	RoleFactor       = 0.2

	// MaxRecommended caps Result.RecommendedSkills.
	MaxRecommended = 5
)

// Details holds the unweighted sub-scores.
type Details struct {
	SkillScore      int `json:"skill_score"`
	ExperienceScore int `json:"experience_score"`
	RoleScore       int `json:"role_score"`
}

// Result is the outcome of evaluating a profile against its interests.
type Result struct {
	Score             int      `json:"score"`
	MatchedSkills     []string `json:"matched_skills"`
	MissingSkills     []string `json:"missing_skills"`
	RecommendedSkills []string `json:"recommended_skills"`
	Details           Details  `json:"details"`
}

// Engine evaluates profiles against a taxonomy.
type Engine struct {
	taxonomy *taxonomy.Taxonomy
}

// NewEngine creates an engine bound to the given taxonomy.
// A nil taxonomy selects the compiled-in default.
func NewEngine(t *taxonomy.Taxonomy) *Engine {
	if t == nil {
		t = taxonomy.Default()
	}
	return &Engine{taxonomy: t}
}

// Taxonomy returns the taxonomy the engine scores against.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy {
	return e.taxonomy
}

type target struct {
	name   string
	weight int
}

// Evaluate scores the profile against every known category in its interests.
// A profile without known interests yields a zero Result.
func (e *Engine) Evaluate(p profile.Profile) Result {
	p.Normalize()

	interests := e.knownInterests(p.Interests)
	if len(interests) == 0 {
		return emptyResult()
	}

	targets := e.targets(interests)
	candidate := lowerAll(p.Skills)

	matched := make([]string, 0, len(targets))
	missing := make([]string, 0, len(targets))
	matchedWeight, totalWeight := 0, 0

	for _, t := range targets {
		totalWeight += t.weight
		if anyMatch(candidate, t.name) {
			matchedWeight += t.weight
			matched = append(matched, t.name)
			continue
		}
		missing = append(missing, t.name)
	}

	skill := 0.0
	if totalWeight > 0 {
		skill = 100 * float64(matchedWeight) / float64(totalWeight)
	}
	experience := ExperienceScore(p.ExperienceYears)
	role := roleScore(p.JobTitles, interests)

	recommended := make([]string, 0, MaxRecommended)
	for _, s := range missing {
		if len(recommended) == MaxRecommended {
			break
		}
		recommended = append(recommended, s)
	}

	return Result{
		Score:             Composite(skill, experience, role),
		MatchedSkills:     matched,
		MissingSkills:     missing,
		RecommendedSkills: recommended,
		Details: Details{
			SkillScore:      bounded(skill),
			ExperienceScore: bounded(experience),
			RoleScore:       bounded(role),
		},
	}
}

func (e *Engine) knownInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	for _, id := range interests {
		if e.taxonomy.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// targets unions the skill lists of the categories. A skill listed under
// several categories keeps its first position and its highest weight.
func (e *Engine) targets(interests []string) []target {
	index := make(map[string]int)
	var out []target

	for _, id := range interests {
		for _, s := range e.taxonomy.Resolve(id) {
			key := strings.ToLower(strings.TrimSpace(s.Name))
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				if int(s.Weight) > out[i].weight {
					out[i].weight = int(s.Weight)
				}
				continue
			}
			index[key] = len(out)
			out = append(out, target{name: s.Name, weight: int(s.Weight)})
		}
	}

	return out
}

// ExperienceScore maps years of experience onto the seniority steps.
func ExperienceScore(years float64) float64 {
	years = profile.ClampYears(years)
	switch {
	case years < 1:
		return 40
	case years < 3:
		return 70
	case years < 5:
		return 90
	default:
		return 100
	}
}

func roleScore(titles, interests []string) float64 {
	if len(titles) == 0 {
		return 0
	}

	tokens := strings.Fields(strings.ToLower(strings.Join(interests, " ")))
	for _, title := range titles {
		title = strings.ToLower(title)
		for _, token := range tokens {
			if strings.Contains(title, token) {
				return 100
			}
		}
	}

	return 50
}

// Composite combines raw sub-scores with the fixed 60/20/20 split and
// rounds the result into [0, 100].
func Composite(skill, experience, role float64) int {
	total := skill*SkillFactor + experience*ExperienceFactor + role*RoleFactor
	return bounded(total)
}

// FuzzyMatch reports whether either skill name contains the other, ignoring case.
// Blank names never match.
func FuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anyMatch(candidate []string, name string) bool {
	for _, c := range candidate {
		if FuzzyMatch(c, name) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func bounded(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

func emptyResult() Result {
	return Result{
		MatchedSkills:     []string{},
		MissingSkills:     []string{},
		RecommendedSkills: []string{},
	}
}
