package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/history"
	"github.com/spigell/skillmatch/internal/jobs"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/ranking"
)

const (
	PromptShow            = "Show ranked jobs"
	PromptReportByCompany = "Report by company"
	PromptJobsToFile      = "Dump jobs to file"
	PromptSaveToHistory   = "Save matches to history"
	PromptSaveJob         = "Save job"
	PromptMarkApplied     = "Mark applied"
	PromptExit            = "Exit"
	PromptBack            = "Back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShow, PromptReportByCompany, PromptJobsToFile, PromptSaveToHistory, PromptSaveJob, PromptMarkApplied, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank job postings by how well they fit the profile",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("jobs", "f", "", "a job postings file (yaml, json or toml)")
	rankCmd.Flags().StringP("query", "q", "", "keep jobs whose title, company or skills contain the query")
	rankCmd.Flags().String("sort-by", "", "match-desc, salary-desc or title-asc")
	rankCmd.Flags().Int("limit", 0, "keep only the first N jobs, 0 keeps everything")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the ranked jobs without asking")

	viper.BindPFlag("jobs", rankCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("rank.query", rankCmd.Flags().Lookup("query"))
	viper.BindPFlag("rank.sort-by", rankCmd.Flags().Lookup("sort-by"))
	viper.BindPFlag("rank.limit", rankCmd.Flags().Lookup("limit"))
}

type ranked struct {
	profile *profile.Profile
	jobs    *jobs.Jobs
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := prepare()

	if config.Jobs == "" {
		logger.Fatal("jobs file is required", zap.String("hint", "set --jobs, SKILLMATCH_JOBS or the 'jobs' key in the configuration file"))
	}

	list, err := jobs.Load(config.Jobs)
	if err != nil {
		logger.Fatal("loading jobs", zap.Error(err))
	}

	logger.Info("jobs loaded", zap.Int("count", list.Len()))

	var p *profile.Profile
	if config.Profile != "" {
		if p, err = profile.Load(config.Profile); err != nil {
			logger.Fatal("loading profile", zap.Error(err))
		}
	}
	logger = profileLogger(logger, p)

	result, err := runRanking(ctx, logger, config, p, list)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	if result.jobs.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after ranking"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		actions := []string{PromptShow}
		if config.History.Enabled {
			actions = append(actions, PromptSaveToHistory)
		}
		for _, action := range actions {
			if err := handleAction(ctx, cmd.OutOrStdout(), action, logger, config, result); err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of jobs", zap.Int("count", result.jobs.Len()))

		if err := handleAction(ctx, cmd.OutOrStdout(), action, logger, config, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func runRanking(ctx context.Context, logger *zap.Logger, config *Config, p *profile.Profile, list *jobs.Jobs) (ranked, error) {
	steps := ranking.Default()
	if p == nil {
		reason := "no profile configured"
		ranking.DisableByName(steps, ranking.ScoreStep, reason)
		ranking.DisableByName(steps, ranking.MinimumMatchStep, reason)
	}

	out, err := ranking.Run(ctx, rankingConfig(config), ranking.Deps{Logger: logger, Profile: p}, steps, list)
	if err != nil {
		return ranked{}, err
	}

	for _, s := range ranking.Describe(steps) {
		logger.Debug("ranking step status",
			zap.String("name", s.Name),
			zap.Bool("enabled", s.Enabled),
			zap.String("reason", s.Reason),
			zap.Any("details", s.Details),
		)
	}

	return ranked{profile: p, jobs: out}, nil
}

func handleAction(ctx context.Context, w io.Writer, action string, logger *zap.Logger, config *Config, r ranked) error {
	switch action {
	case PromptShow:
		return printJSON(w, r.jobs)
	case PromptReportByCompany:
		return printJSON(w, r.jobs.ReportByCompany())
	case PromptJobsToFile:
		filename, err := r.jobs.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptSaveToHistory:
		if r.profile == nil {
			logger.Warn("nothing to save", zap.String("reason", "no profile configured"))
			return nil
		}
		if err := saveRecords(ctx, config.History.Path, jobRecords(r)...); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		logger.Info("matches saved to history", zap.String("path", config.History.Path), zap.Int("count", r.jobs.Len()))
		return nil
	case PromptSaveJob, PromptMarkApplied:
		id, err := selectJob(r.jobs)
		if err != nil {
			return err
		}
		if id == "" {
			return nil
		}
		if action == PromptSaveJob {
			return saveJob(ctx, logger, config.History.Path, r.jobs, id)
		}
		return markApplied(ctx, logger, config.History.Path, r.jobs, id)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func jobRecords(r ranked) []history.Record {
	records := make([]history.Record, 0, r.jobs.Len())
	for _, job := range r.jobs.Items {
		records = append(records, history.FromJobMatch(r.profile.Name, *job, matching.ScoreJob(r.profile, *job)))
	}
	return records
}

// selectJob returns the id of the picked job or an empty string for Back.
func selectJob(list *jobs.Jobs) (string, error) {
	items := make([]string, 0, list.Len()+1)
	for _, job := range list.Items {
		items = append(items, fmt.Sprintf("%s %s / %s", job.ID, job.Title, job.Company))
	}
	items = append(items, PromptBack)

	jobPrompt := promptui.Select{
		Label: "Which job?",
		Items: items,
		Size:  10,
	}

	idx, _, err := jobPrompt.Run()
	if err != nil {
		return "", err
	}
	if idx >= list.Len() {
		return "", nil
	}
	return list.Items[idx].ID, nil
}

func saveJob(ctx context.Context, logger *zap.Logger, path string, list *jobs.Jobs, id string) error {
	job := list.FindByID(id)
	if job == nil {
		return fmt.Errorf("job %q is not in the ranked list", id)
	}

	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := store.SaveJob(ctx, *job)
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	logger.Info("job saved", zap.String("job_id", id), zap.Bool("already_saved", !added))
	return nil
}

func markApplied(ctx context.Context, logger *zap.Logger, path string, list *jobs.Jobs, id string) error {
	job := list.FindByID(id)
	if job == nil {
		return fmt.Errorf("job %q is not in the ranked list", id)
	}

	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, found, err := store.ApplicationByJobID(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up application: %w", err)
	}
	if found {
		logger.Info("application already tracked", zap.String("job_id", id), zap.String("status", string(existing.Status)))
		return nil
	}

	app, err := store.AddApplication(ctx, history.ApplicationFromPosting(*job))
	if err != nil {
		return fmt.Errorf("tracking application: %w", err)
	}

	logger.Info("application tracked", zap.String("job_id", id), zap.String("application_id", app.ID))
	return nil
}
