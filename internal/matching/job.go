package matching

import (
	"math"
	"strings"

	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/profile"
)

// JobMatch is the outcome of scoring one posting for one candidate.
type JobMatch struct {
	JobID         string   `json:"job_id"`
	Match         int      `json:"match"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Details       Details  `json:"details"`
}

// ScoreJob scores a posting with the same three factors as Evaluate.
// Posting skills are weighted equally and the title stands in for the
// seniority requirement. A nil profile scores every posting at zero.
func ScoreJob(p *profile.Profile, job jobs.Posting) JobMatch {
	result := JobMatch{
		JobID:         job.ID,
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}
	if p == nil {
		return result
	}

	candidate := *p
	candidate.Normalize()
	skills := lowerAll(candidate.Skills)

	total := 0
	for _, s := range job.Skills {
		if strings.TrimSpace(s) == "" {
			continue
		}
		total++
		if anyMatch(skills, s) {
			result.MatchedSkills = append(result.MatchedSkills, s)
			continue
		}
		result.MissingSkills = append(result.MissingSkills, s)
	}

	skill := 0.0
	if total > 0 {
		skill = 100 * float64(len(result.MatchedSkills)) / float64(total)
	}
	experience := JobExperienceScore(candidate.ExperienceYears, job.Title)
	role := jobRoleScore(candidate, job.Title)

	result.Match = Composite(skill, experience, role)
	result.Details = Details{
		SkillScore:      bounded(skill),
		ExperienceScore: bounded(experience),
		RoleScore:       bounded(role),
	}

	return result
}

// JobExperienceScore reads the seniority requirement from the title:
// senior roles want five years, junior and intern roles want none, anything
// else wants two. Below the requirement credit scales linearly.
func JobExperienceScore(years float64, title string) float64 {
	years = profile.ClampYears(years)
	title = strings.ToLower(title)

	switch {
	case strings.Contains(title, "senior"):
		return scaled(years, 5)
	case strings.Contains(title, "junior"), strings.Contains(title, "intern"):
		return 100
	default:
		return scaled(years, 2)
	}
}

func scaled(years, required float64) float64 {
	return math.Min(years/required, 1) * 100
}

func jobRoleScore(p profile.Profile, title string) float64 {
	title = strings.ToLower(title)
	if strings.TrimSpace(title) == "" {
		return 0
	}

	sources := make([]string, 0, len(p.Interests)+len(p.JobTitles))
	sources = append(sources, p.Interests...)
	sources = append(sources, p.JobTitles...)

	for _, src := range sources {
		for _, token := range strings.Fields(strings.ToLower(src)) {
			if strings.Contains(title, token) {
				return 100
			}
		}
	}

	return 0
}
