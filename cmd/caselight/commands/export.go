package commands

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caselight/caselight/config"
	"github.com/caselight/caselight/errors"
	"github.com/caselight/caselight/export"
	"github.com/caselight/caselight/logger"
	"github.com/caselight/caselight/store"
)

// ExportCmd assembles an integrity export from a decision history.
var ExportCmd = &cobra.Command{
	Use:   "export <history.json>",
	Short: "Assemble (and optionally sign) an integrity export",
	Long: `Run chain verification and duplicate detection over a decision history
and assemble the exportable report. The export echoes its canonicalization
parameters so a third party can recompute the content hash independently.

With --sign, the export is signed with the ed25519 seed configured under
signing.seed_path; the signature covers the export's canonical hash.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		includePayload, _ := cmd.Flags().GetBool("include-payload")
		sign, _ := cmd.Flags().GetBool("sign")
		save, _ := cmd.Flags().GetBool("save")
		knownIDsPath, _ := cmd.Flags().GetString("known-ids")
		outPath, _ := cmd.Flags().GetString("out")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("include-payload") {
			includePayload = cfg.Export.IncludePayload
		}

		entries, err := readHistory(args[0])
		if err != nil {
			return err
		}

		opts := export.Options{IncludePayload: includePayload}

		if knownIDsPath != "" {
			opts.KnownIDs, err = readKnownIDs(knownIDsPath)
			if err != nil {
				return err
			}
		}

		if sign {
			opts.Signer, err = loadSigner(cfg)
			if err != nil {
				return err
			}
		}

		resp, err := export.BuildExport(entries, opts)
		if err != nil {
			return err
		}

		logger.Logger.Infow("Export assembled",
			"export_id", resp.Metadata.ExportID,
			"entries", resp.Metadata.EntryCount,
			"is_valid", resp.IntegrityCheck.IsValid,
			"signed", resp.Signature != nil,
		)

		if save {
			cache, err := store.Open(cfg.Store.Path, logger.Logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			hash, err := cache.PutExport(resp)
			if err != nil {
				return err
			}
			logger.Logger.Infow("Export cached", "hash", hash)
		}

		return writeJSON(cmd, outPath, resp)
	},
}

// loadSigner reads the hex-encoded ed25519 seed from the configured path.
func loadSigner(cfg *config.Config) (*export.Signer, error) {
	if cfg.Signing.SeedPath == "" {
		return nil, errors.New("signing requested but signing.seed_path is not configured")
	}

	raw, err := os.ReadFile(cfg.Signing.SeedPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read signing seed from %s", cfg.Signing.SeedPath)
	}

	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(err, "signing seed in %s is not valid hex", cfg.Signing.SeedPath)
	}
	return export.NewSignerFromSeed(seed)
}

func init() {
	ExportCmd.Flags().Bool("include-payload", false, "Keep per-entry payloads in the export")
	ExportCmd.Flags().Bool("sign", false, "Sign the export with the configured ed25519 seed")
	ExportCmd.Flags().Bool("save", false, "Store the export in the content-addressed cache")
	ExportCmd.Flags().String("known-ids", "", "JSON file with the full entry id set for window-aware verification")
	ExportCmd.Flags().String("out", "", "Write the export to a file instead of stdout")
}
