package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caselight/caselight/cmd/caselight/commands"
	"github.com/caselight/caselight/config"
	"github.com/caselight/caselight/logger"
)

var rootCmd = &cobra.Command{
	Use:   "caselight",
	Short: "caselight - audit integrity tooling for compliance decisions",
	Long: `caselight - audit integrity and diff tooling for compliance decision records.

caselight canonicalizes and hashes audit packets, verifies decision history
chains, surfaces duplicate computations, diffs audit snapshots, and assembles
signed integrity exports.

Available commands:
  hash    - Canonicalize and hash an audit packet
  verify  - Verify the previous_run_id chain of a decision history
  dupes   - Detect duplicate computations in a decision history
  diff    - Compare two audit packets by content signature
  export  - Assemble (and optionally sign) an integrity export

Examples:
  caselight hash packet.json                # Print the packet's content hash
  caselight verify history.json             # Chain integrity report
  caselight diff before.json after.json     # Structural diff
  caselight export history.json --sign      # Signed integrity export`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.HashCmd)
	rootCmd.AddCommand(commands.VerifyCmd)
	rootCmd.AddCommand(commands.DupesCmd)
	rootCmd.AddCommand(commands.DiffCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
