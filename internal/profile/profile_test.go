package profile

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	p := Profile{
		Name:            "  Ada  ",
		Skills:          []string{" React ", "react", "", "Go", "   "},
		ExperienceYears: -3,
		JobTitles:       []string{" Frontend Intern ", ""},
		Interests:       []string{"frontend", "frontend", " data ", "Frontend"},
	}
	p.Normalize()

	if p.Name != "Ada" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "React" || p.Skills[1] != "Go" {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
	if p.ExperienceYears != 0 {
		t.Fatalf("expected clamped experience, got %v", p.ExperienceYears)
	}
	if len(p.JobTitles) != 1 || p.JobTitles[0] != "Frontend Intern" {
		t.Fatalf("unexpected titles %v", p.JobTitles)
	}
	expected := []string{"frontend", "data", "Frontend"}
	if len(p.Interests) != len(expected) {
		t.Fatalf("unexpected interests %v", p.Interests)
	}
	for i := range expected {
		if p.Interests[i] != expected[i] {
			t.Fatalf("unexpected interests %v", p.Interests)
		}
	}
}

func TestClampYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  float64
		expect float64
	}{
		{name: "negative", input: -1, expect: 0},
		{name: "nan", input: math.NaN(), expect: 0},
		{name: "zero", input: 0, expect: 0},
		{name: "positive", input: 2.5, expect: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClampYears(tt.input); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestWithInterestsDoesNotModifyOriginal(t *testing.T) {
	t.Parallel()

	p := Profile{Interests: []string{"data"}}
	q := p.WithInterests([]string{"frontend", "frontend"})

	if len(p.Interests) != 1 || p.Interests[0] != "data" {
		t.Fatalf("original modified: %v", p.Interests)
	}
	if len(q.Interests) != 1 || q.Interests[0] != "frontend" {
		t.Fatalf("unexpected interests %v", q.Interests)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	data := `name: Ada
email: ada@example.com
education: BSc Computer Science
ats-score: 78
skills: [React, HTML, react]
experience-years: 2
job-titles:
  - Frontend Intern
interests: [frontend]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Email != "ada@example.com" || p.Education != "BSc Computer Science" || p.ATSScore != 78 {
		t.Fatalf("unexpected contact fields %+v", p)
	}
	if got := p.Completeness(); got != 100 {
		t.Fatalf("expected complete profile, got %d", got)
	}
	if p.Name != "Ada" || p.ExperienceYears != 2 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.Skills) != 2 {
		t.Fatalf("expected duplicate skill dropped, got %v", p.Skills)
	}
	if len(p.JobTitles) != 1 || len(p.Interests) != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.json")
	data := `{"skills": ["Python"], "experience-years": -4, "interests": ["data"]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ExperienceYears != 0 {
		t.Fatalf("expected clamped experience, got %v", p.ExperienceYears)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCompleteness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *Profile
		expect  int
	}{
		{name: "nil", profile: nil, expect: 0},
		{name: "empty", profile: &Profile{}, expect: 0},
		{name: "name only", profile: &Profile{Name: "Ada"}, expect: 15},
		{name: "blank fields ignored", profile: &Profile{Name: " ", Email: "  ", Skills: []string{" "}, Interests: []string{""}}, expect: 0},
		{name: "skills and interests", profile: &Profile{Skills: []string{"Go"}, Interests: []string{"backend"}}, expect: 30},
		{name: "experience counts only when positive", profile: &Profile{ExperienceYears: -3, ATSScore: -1}, expect: 0},
		{name: "experience and ats", profile: &Profile{ExperienceYears: 0.5, ATSScore: 40}, expect: 30},
		{name: "no education", profile: &Profile{
			Name: "Ada", Email: "ada@example.com", Skills: []string{"Go"}, ExperienceYears: 3,
			Interests: []string{"backend"}, ATSScore: 80,
		}, expect: 85},
		{name: "full", profile: &Profile{
			Name: "Ada", Email: "ada@example.com", Skills: []string{"Go"}, ExperienceYears: 3,
			Education: "BSc", Interests: []string{"backend"}, ATSScore: 80,
		}, expect: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.profile.Completeness(); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}
