package commands

import (
	"github.com/spf13/cobra"

	"github.com/caselight/caselight/chain"
	"github.com/caselight/caselight/logger"
)

// VerifyCmd validates the previous_run_id linkage of a decision history.
var VerifyCmd = &cobra.Command{
	Use:   "verify <history.json>",
	Short: "Verify the previous_run_id chain of a decision history",
	Long: `Walk a decision history export and validate its chain linkage: every
non-root entry must reference an existing previous run.

Broken links invalidate the export. Orphans (entries with no root reachable
inside the window) are reported separately: when the export covers a
truncated window, pass --known-ids with the full id set so truncation is not
mistaken for breakage.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		knownIDsPath, _ := cmd.Flags().GetString("known-ids")
		outPath, _ := cmd.Flags().GetString("out")

		entries, err := readHistory(args[0])
		if err != nil {
			return err
		}

		var knownIDs map[string]bool
		if knownIDsPath != "" {
			knownIDs, err = readKnownIDs(knownIDsPath)
			if err != nil {
				return err
			}
		}

		report := chain.VerifyChainWindow(entries, knownIDs)
		logger.Logger.Infow("Chain verified",
			"total", report.TotalEntries,
			"verified", report.VerifiedEntries,
			"broken_links", len(report.BrokenLinks),
			"is_valid", report.IsValid,
		)

		return writeJSON(cmd, outPath, report)
	},
}

func init() {
	VerifyCmd.Flags().String("known-ids", "", "JSON file with the full entry id set for window-aware verification")
	VerifyCmd.Flags().String("out", "", "Write the report to a file instead of stdout")
}
