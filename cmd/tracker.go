package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/history"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		runTracker(cmd, func(ctx context.Context, store *history.Store, w io.Writer) error {
			if id, _ := cmd.Flags().GetString("unsave"); id != "" {
				removed, err := store.UnsaveJob(ctx, id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %q is not saved", id)
				}
			}
			saved, err := store.SavedJobs(ctx)
			if err != nil {
				return err
			}
			return printJSON(w, saved)
		})
	},
}

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "List tracked applications",
	Run: func(cmd *cobra.Command, _ []string) {
		runTracker(cmd, listApplications)
	},
}

var applicationStatusCmd = &cobra.Command{
	Use:   "status APPLICATION_ID STATUS",
	Short: "Move an application to applied, interview, offer or rejected",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runTracker(cmd, func(ctx context.Context, store *history.Store, w io.Writer) error {
			status, err := history.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := store.UpdateApplicationStatus(ctx, args[0], status); err != nil {
				return err
			}
			return listApplications(ctx, store, w)
		})
	},
}

var applicationNotesCmd = &cobra.Command{
	Use:   "notes APPLICATION_ID TEXT",
	Short: "Replace the notes of an application",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runTracker(cmd, func(ctx context.Context, store *history.Store, w io.Writer) error {
			if err := store.UpdateApplicationNotes(ctx, args[0], args[1]); err != nil {
				return err
			}
			return listApplications(ctx, store, w)
		})
	},
}

var applicationRemoveCmd = &cobra.Command{
	Use:   "remove APPLICATION_ID",
	Short: "Stop tracking an application",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTracker(cmd, func(ctx context.Context, store *history.Store, w io.Writer) error {
			if err := store.RemoveApplication(ctx, args[0]); err != nil {
				return err
			}
			return listApplications(ctx, store, w)
		})
	},
}

func init() {
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(applicationsCmd)
	applicationsCmd.AddCommand(applicationStatusCmd, applicationNotesCmd, applicationRemoveCmd)

	savedCmd.Flags().String("unsave", "", "remove the job with this id from the saved list first")
}

func runTracker(cmd *cobra.Command, fn func(context.Context, *history.Store, io.Writer) error) {
	ctx := context.Background()
	logger, config := prepare()

	store, err := openHistory(ctx, config)
	if errors.Is(err, errHistoryDisabled) {
		logger.Info("nothing to show", zap.String("reason", err.Error()), zap.String("path", config.History.Path))
		return
	}
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}
	defer store.Close()

	if err := fn(ctx, store, cmd.OutOrStdout()); err != nil {
		logger.Fatal(cmd.Name()+" failed", zap.Error(err))
	}
}

func listApplications(ctx context.Context, store *history.Store, w io.Writer) error {
	apps, err := store.Applications(ctx)
	if err != nil {
		return err
	}
	return printJSON(w, apps)
}
