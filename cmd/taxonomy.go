package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy [category]",
	Short: "List career categories and their weighted skills",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, config := prepare()

		tax, err := loadTaxonomy(config)
		if err != nil {
			logger.Fatal("loading taxonomy", zap.Error(err))
		}

		if err := printTaxonomy(cmd.OutOrStdout(), tax, args); err != nil {
			logger.Fatal("printing taxonomy", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
}

func printTaxonomy(w io.Writer, tax *taxonomy.Taxonomy, only []string) error {
	ids := tax.Categories()
	if len(only) > 0 {
		if !tax.Has(only[0]) {
			return fmt.Errorf("unknown category %q, expected one of %v", only[0], ids)
		}
		ids = only[:1]
	}

	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%s (%s), total weight %d\n", id, tax.Label(id), tax.TotalWeight(id)); err != nil {
			return err
		}
		for _, s := range tax.Resolve(id) {
			if _, err := fmt.Fprintf(w, "  - %s [%d]\n", s.Name, s.Weight); err != nil {
				return err
			}
		}
	}

	return nil
}
