package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caselight/caselight/chain"
	"github.com/caselight/caselight/errors"
	"github.com/caselight/caselight/packet"
)

// readPacket loads an audit packet from a JSON file.
func readPacket(path string) (*packet.AuditPacket, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read packet file %s", path)
	}
	var p packet.AuditPacket
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.WrapInvalidInput(err, fmt.Sprintf("failed to parse packet file %s", path))
	}
	return &p, nil
}

// readHistory loads a decision history (array of entries) from a JSON file.
func readHistory(path string) ([]chain.HistoryEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read history file %s", path)
	}
	var entries []chain.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.WrapInvalidInput(err, fmt.Sprintf("failed to parse history file %s", path))
	}
	return entries, nil
}

// readKnownIDs loads the full known-id set (JSON array of strings) used for
// window-aware chain verification.
func readKnownIDs(path string) (map[string]bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read known-ids file %s", path)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, errors.WrapInvalidInput(err, fmt.Sprintf("failed to parse known-ids file %s", path))
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

// writeJSON prints v as indented JSON to the command's stdout, or to outPath
// when non-empty.
func writeJSON(cmd *cobra.Command, outPath string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, append(out, '\n'), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", outPath)
		}
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
