package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
)

type skillsOutput struct {
	Profile      string       `json:"profile,omitempty"`
	Completeness int          `json:"completeness"`
	SkillGap     matching.Gap `json:"skill_gap"`
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Compare the profile skills with in-demand skills and rate profile completeness",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := prepare()

		if config.Profile == "" {
			logger.Fatal("profile is required", zap.String("hint", "set --profile, SKILLMATCH_PROFILE or the 'profile' key in the configuration file"))
		}

		p, err := profile.Load(config.Profile)
		if err != nil {
			logger.Fatal("loading profile", zap.Error(err))
		}

		out := skillsReport(p)
		profileLogger(logger, p).Info("skills compared",
			zap.Int("have", len(out.SkillGap.Have)),
			zap.Int("need", len(out.SkillGap.Need)),
		)

		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			logger.Fatal("printing skills", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}

func skillsReport(p *profile.Profile) skillsOutput {
	return skillsOutput{
		Profile:      p.Name,
		Completeness: p.Completeness(),
		SkillGap:     matching.SkillGap(p.Skills),
	}
}
