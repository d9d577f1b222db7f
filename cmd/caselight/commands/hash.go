package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caselight/caselight/canonical"
	"github.com/caselight/caselight/config"
	"github.com/caselight/caselight/logger"
	"github.com/caselight/caselight/packet"
	"github.com/caselight/caselight/store"
)

// HashCmd canonicalizes and hashes an audit packet.
var HashCmd = &cobra.Command{
	Use:   "hash <packet.json>",
	Short: "Canonicalize and hash an audit packet",
	Long: `Compute the content hash of an audit packet: canonical serialization with
volatile fields (metadata.generatedAt, packetHash) excluded, then SHA-256.

The hash is stable under field reordering and changes on any semantic edit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showCanonical, _ := cmd.Flags().GetBool("canonical")
		save, _ := cmd.Flags().GetBool("save")

		p, err := readPacket(args[0])
		if err != nil {
			return err
		}

		if showCanonical {
			canonicalStr, err := canonical.CanonicalizeExcluding(p, packet.ExcludedHashFields())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), canonicalStr)
		}

		hash, err := packet.Hash(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)

		if save {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cache, err := store.Open(cfg.Store.Path, logger.Logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			if _, err := cache.PutPacket(p); err != nil {
				return err
			}
			logger.Logger.Infow("Packet cached", "hash", hash, "case_id", p.Metadata.CaseID)
		}
		return nil
	},
}

func init() {
	HashCmd.Flags().Bool("canonical", false, "Also print the canonical serialization")
	HashCmd.Flags().Bool("save", false, "Store the packet in the content-addressed cache")
}
