package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand/stagehand/pkg/persist"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <actor-id>",
		Short: "Validate one actor's persisted snapshot",
		Long: `Load a single actor's persisted snapshot through the persistence guard
and report the result.

Exit is non-zero when the entry is missing, corrupted, or unreadable; the
error distinguishes corruption from storage failures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actorID := args[0]

			rt, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			snap, err := rt.Guard.Load(ctx, actorID)
			switch {
			case errors.Is(err, persist.ErrNotFound):
				return fmt.Errorf("no persisted snapshot for actor %s", actorID)
			case persist.IsCorruption(err):
				return fmt.Errorf("snapshot is corrupted: %w", err)
			case err != nil:
				return fmt.Errorf("storage failure: %w", err)
			}

			cmd.Printf("actor %s: valid snapshot (status=%s, %d context keys)\n",
				actorID, snap.Status, len(snap.Context))
			return nil
		},
	}
	return cmd
}
