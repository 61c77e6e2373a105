package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/history"
)

var errHistoryDisabled = errors.New("history is disabled and no database exists yet")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved match results, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		listHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "how many records to show")
}

func listHistory(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := prepare()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := loadHistory(ctx, config, limit)
	if errors.Is(err, errHistoryDisabled) {
		logger.Info("nothing to show", zap.String("reason", err.Error()), zap.String("path", config.History.Path))
		return
	}
	if err != nil {
		logger.Fatal("listing history", zap.Error(err))
	}

	logger.Info("history loaded", zap.String("path", config.History.Path), zap.Int("count", len(records)))

	if err := printJSON(cmd.OutOrStdout(), records); err != nil {
		logger.Fatal("printing history", zap.Error(err))
	}
}

func loadHistory(ctx context.Context, config *Config, limit int) ([]history.Record, error) {
	store, err := openHistory(ctx, config)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.List(ctx, limit)
}

// openHistory opens the store for reading. A disabled history is only read
// when its database file is already there.
func openHistory(ctx context.Context, config *Config) (*history.Store, error) {
	if !config.History.Enabled && !history.Exists(config.History.Path) {
		return nil, errHistoryDisabled
	}
	return history.Open(ctx, config.History.Path)
}
