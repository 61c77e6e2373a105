// Package profile describes the candidate side of a match.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Profile is a candidate profile supplied fresh on every evaluation.
type Profile struct {
	Name            string   `mapstructure:"name" json:"name,omitempty"`
	Email           string   `mapstructure:"email" json:"email,omitempty"`
	Education       string   `mapstructure:"education" json:"education,omitempty"`
	ATSScore        int      `mapstructure:"ats-score" json:"ats_score,omitempty"`
	Skills          []string `mapstructure:"skills" json:"skills"`
	ExperienceYears float64  `mapstructure:"experience-years" json:"experience_years"`
	JobTitles       []string `mapstructure:"job-titles" json:"job_titles"`
	Interests       []string `mapstructure:"interests" json:"interests"`
}

// Load reads a profile from a yaml, json or toml file.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decoding profile %q: %w", path, err)
	}

	p.Normalize()
	return &p, nil
}

// Normalize trims every text field, drops empty and case-insensitive duplicate
// skills and interests, and clamps experience to a non-negative finite value.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Education = strings.TrimSpace(p.Education)
	p.Skills = uniqueFold(p.Skills)
	p.Interests = unique(p.Interests)
	p.JobTitles = trimmed(p.JobTitles)
	p.ExperienceYears = ClampYears(p.ExperienceYears)
}

// Completeness weights, summing to 100.
const (
	nameWeight       = 15
	emailWeight      = 10
	skillsWeight     = 20
	experienceWeight = 15
	educationWeight  = 15
	interestsWeight  = 10
	atsWeight        = 15
)

// Completeness rates how filled in the profile is, from 0 to 100.
// Experience and the ATS score count only when positive.
func (p *Profile) Completeness() int {
	if p == nil {
		return 0
	}

	score := 0
	if strings.TrimSpace(p.Name) != "" {
		score += nameWeight
	}
	if strings.TrimSpace(p.Email) != "" {
		score += emailWeight
	}
	if len(trimmed(p.Skills)) > 0 {
		score += skillsWeight
	}
	if ClampYears(p.ExperienceYears) > 0 {
		score += experienceWeight
	}
	if strings.TrimSpace(p.Education) != "" {
		score += educationWeight
	}
	if len(trimmed(p.Interests)) > 0 {
		score += interestsWeight
	}
	if p.ATSScore > 0 {
		score += atsWeight
	}

	return min(score, 100)
}

// ClampYears maps negative and NaN values to zero.
func ClampYears(years float64) float64 {
	if math.IsNaN(years) || years < 0 {
		return 0
	}
	return years
}

// WithInterests returns a copy of the profile with the interests replaced.
func (p Profile) WithInterests(interests []string) Profile {
	p.Interests = unique(interests)
	return p
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// uniqueFold keeps the first spelling of every case-insensitive value.
func uniqueFold(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range trimmed(values) {
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// unique dedupes exact values; category identifiers are case-sensitive.
func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range trimmed(values) {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
