package matching

import (
	"math"
	"slices"
	"strings"
)

// InDemandSkills is the market list the skill gap is measured against.
var InDemandSkills = []string{
	"TypeScript", "React", "Node.js", "AWS", "Docker", "Kubernetes",
	"GraphQL", "Python", "Machine Learning", "CI/CD", "MongoDB",
	"Redis", "WebSockets", "Tailwind CSS", "Next.js",
}

// Gap splits a market skill list into what the candidate has and still needs.
type Gap struct {
	Have       []string `json:"have"`
	Need       []string `json:"need"`
	Percentage int      `json:"percentage"`
}

// SkillGap compares candidate skills with InDemandSkills.
func SkillGap(skills []string) Gap {
	return GapAgainst(skills, InDemandSkills)
}

// GapAgainst compares candidate skills with a market list. Unlike Evaluate this
// is an exact membership test, ignoring case and surrounding spaces.
// Both halves keep the market order.
func GapAgainst(skills, market []string) Gap {
	owned := lowerAll(skills)
	gap := Gap{Have: []string{}, Need: []string{}}

	for _, m := range market {
		if slices.Contains(owned, strings.ToLower(strings.TrimSpace(m))) {
			gap.Have = append(gap.Have, m)
			continue
		}
		gap.Need = append(gap.Need, m)
	}

	if len(market) > 0 {
		gap.Percentage = int(math.Round(100 * float64(len(gap.Have)) / float64(len(market))))
	}

	return gap
}
