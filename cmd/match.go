package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/history"
	"github.com/spigell/skillmatch/internal/learning"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/taxonomy"
)

const PromptDone = "done"

type matchOutput struct {
	Profile      string                    `json:"profile,omitempty"`
	Interests    []string                  `json:"interests"`
	Result       matching.Result           `json:"result"`
	Completeness int                       `json:"completeness"`
	SkillGap     matching.Gap              `json:"skill_gap"`
	Learning     []learning.Recommendation `json:"learning,omitempty"`
	FreeStart    []freeResource            `json:"free_start,omitempty"`
}

// freeResource is the first free resource for a recommended skill.
type freeResource struct {
	Skill    string            `json:"skill"`
	Resource learning.Resource `json:"resource"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the profile against the skill lists of its career interests",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringSlice("interests", nil, "comma separated category ids that replace the profile interests")
	matchCmd.Flags().BoolP("interactive", "i", false, "pick interests from a list")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := prepare()

	if config.Profile == "" {
		logger.Fatal("profile is required", zap.String("hint", "set --profile, SKILLMATCH_PROFILE or the 'profile' key in the configuration file"))
	}

	tax, err := loadTaxonomy(config)
	if err != nil {
		logger.Fatal("loading taxonomy", zap.Error(err))
	}

	p, err := profile.Load(config.Profile)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err))
	}

	if cmd.Flags().Changed("interests") {
		interests, _ := cmd.Flags().GetStringSlice("interests")
		*p = p.WithInterests(interests)
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		interests, err := selectInterests(tax, p.Interests)
		if err != nil {
			logger.Fatal("selecting interests", zap.Error(err))
		}
		*p = p.WithInterests(interests)
	}

	logger = profileLogger(logger, p)

	out := evaluate(tax, p, config.Learning.Enabled)
	if len(out.Result.MatchedSkills) == 0 && len(out.Result.MissingSkills) == 0 {
		logger.Warn("no known interests selected", zap.Strings("categories", tax.Categories()))
	}

	logger.Info("profile evaluated",
		zap.Int("score", out.Result.Score),
		zap.Int("completeness", out.Completeness),
		zap.Int("in_demand_coverage", out.SkillGap.Percentage),
	)

	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}

	if !config.History.Enabled {
		return
	}

	if err := saveRecords(ctx, config.History.Path, history.FromResult(p.Name, p.Interests, out.Result)); err != nil {
		logger.Fatal("saving history", zap.Error(err))
	}
	logger.Info("result saved to history", zap.String("path", config.History.Path))
}

func evaluate(tax *taxonomy.Taxonomy, p *profile.Profile, withLearning bool) matchOutput {
	res := matching.NewEngine(tax).Evaluate(*p)

	out := matchOutput{
		Profile:      p.Name,
		Interests:    p.Interests,
		Result:       res,
		Completeness: p.Completeness(),
		SkillGap:     matching.SkillGap(p.Skills),
	}
	if withLearning {
		out.Learning = learning.ForSkills(res.RecommendedSkills)
		for _, skill := range res.RecommendedSkills {
			if r, ok := learning.BestFree(skill); ok {
				out.FreeStart = append(out.FreeStart, freeResource{Skill: skill, Resource: r})
			}
		}
	}

	return out
}

// selectInterests runs a select loop until the user picks done.
func selectInterests(tax *taxonomy.Taxonomy, current []string) ([]string, error) {
	selected := slices.Clone(current)

	for {
		items := make([]string, 0, len(tax.Categories())+1)
		for _, id := range tax.Categories() {
			if !slices.Contains(selected, id) {
				items = append(items, id)
			}
		}
		items = append(items, PromptDone)

		interestPrompt := promptui.Select{
			Label: fmt.Sprintf("Selected %v. Add an interest", selected),
			Items: items,
		}

		_, choice, err := interestPrompt.Run()
		if err != nil {
			return nil, err
		}

		if choice == PromptDone {
			if len(selected) == 0 {
				return nil, errors.New("at least one interest is required")
			}
			return selected, nil
		}

		selected = append(selected, choice)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func saveRecords(ctx context.Context, path string, records ...history.Record) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, r := range records {
		if _, err := store.Save(ctx, r); err != nil {
			return err
		}
	}

	return nil
}
