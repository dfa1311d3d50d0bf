package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand/stagehand/pkg/persist"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List persisted actor snapshots",
		Long: `List every persisted actor snapshot in the configured storage backend,
with a validation verdict for each entry.

Corrupted entries (structurally invalid payloads) are reported with the
specific violation instead of the snapshot contents.`,
		Example: `  # Inspect the store configured in stagehand.yaml
  stagehand -c stagehand.yaml inspect

  # Machine-readable output
  stagehand -c stagehand.yaml inspect --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			entries, err := rt.Guard.Entries(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printEntriesJSON(cmd, entries)
			}

			if len(entries) == 0 {
				cmd.Println("no persisted snapshots")
				return nil
			}
			for _, entry := range entries {
				if entry.Err != nil {
					cmd.Printf("%-30s INVALID  %v\n", entry.ActorID, entry.Err)
					continue
				}
				cmd.Printf("%-30s %-8s %d context keys\n",
					entry.ActorID, entry.Snapshot.Status, len(entry.Snapshot.Context))
			}
			return nil
		},
	}
	return cmd
}

// printEntriesJSON renders inspect output as a JSON array.
func printEntriesJSON(cmd *cobra.Command, entries []persist.Entry) error {
	type jsonEntry struct {
		ActorID string      `json:"actor_id"`
		Status  string      `json:"status,omitempty"`
		Keys    int         `json:"context_keys,omitempty"`
		Error   string      `json:"error,omitempty"`
		Context interface{} `json:"context,omitempty"`
	}

	out := make([]jsonEntry, 0, len(entries))
	for _, entry := range entries {
		je := jsonEntry{ActorID: entry.ActorID}
		if entry.Err != nil {
			je.Error = entry.Err.Error()
		} else {
			je.Status = string(entry.Snapshot.Status)
			je.Keys = len(entry.Snapshot.Context)
			je.Context = entry.Snapshot.Context
		}
		out = append(out, je)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
