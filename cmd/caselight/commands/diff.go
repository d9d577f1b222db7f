package commands

import (
	"github.com/spf13/cobra"

	"github.com/caselight/caselight/diff"
	"github.com/caselight/caselight/logger"
)

// DiffCmd compares two audit packets structurally.
var DiffCmd = &cobra.Command{
	Use:   "diff <left.json> <right.json>",
	Short: "Compare two audit packets by content signature",
	Long: `Compute the structural difference between two audit packets. Evidence and
human actions are matched by stable content signature, not array position,
so a reordered backend fetch never registers as a change.

With --finalize the result is stamped with an export timestamp and its own
content hash for tamper-evident archival.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		finalize, _ := cmd.Flags().GetBool("finalize")
		outPath, _ := cmd.Flags().GetString("out")

		left, err := readPacket(args[0])
		if err != nil {
			return err
		}
		right, err := readPacket(args[1])
		if err != nil {
			return err
		}

		result := diff.Compare(left, right)
		if finalize {
			if err := diff.Finalize(result); err != nil {
				return err
			}
		}

		logger.Logger.Infow("Packets compared",
			"left_case", result.Left.CaseID,
			"right_case", result.Right.CaseID,
			"has_changes", result.Summary.HasChanges,
		)

		return writeJSON(cmd, outPath, result)
	},
}

func init() {
	DiffCmd.Flags().Bool("finalize", false, "Stamp the diff with exportedAt and diffHash")
	DiffCmd.Flags().String("out", "", "Write the diff to a file instead of stdout")
}
