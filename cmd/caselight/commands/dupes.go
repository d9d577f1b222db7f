package commands

import (
	"github.com/spf13/cobra"

	"github.com/caselight/caselight/chain"
	"github.com/caselight/caselight/logger"
)

// DupesCmd surfaces redundant computations in a decision history.
var DupesCmd = &cobra.Command{
	Use:   "dupes <history.json>",
	Short: "Detect duplicate computations in a decision history",
	Long: `Group history entries by input hash and report every cluster computed
more than once from identical input state. Descriptive only: the history is
append-only and nothing is deduplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		entries, err := readHistory(args[0])
		if err != nil {
			return err
		}

		report := chain.DetectDuplicates(entries)
		logger.Logger.Infow("Duplicate analysis complete",
			"total", report.TotalEntries,
			"unique_hashes", report.TotalUniqueHashes,
			"clusters", len(report.Duplicates),
		)

		return writeJSON(cmd, outPath, report)
	},
}

func init() {
	DupesCmd.Flags().String("out", "", "Write the report to a file instead of stdout")
}
