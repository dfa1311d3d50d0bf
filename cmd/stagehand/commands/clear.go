package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [actor-id]",
		Short: "Remove persisted snapshots",
		Long: `Remove the persisted snapshot for one actor, or every persisted
snapshot with --all.`,
		Example: `  # Remove one actor's snapshot
  stagehand -c stagehand.yaml clear sequence-editor

  # Wipe the whole store
  stagehand -c stagehand.yaml clear --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !all && len(args) == 0 {
				return fmt.Errorf("specify an actor id or --all")
			}

			rt, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if all {
				if err := rt.Guard.ClearAll(ctx); err != nil {
					return err
				}
				cmd.Println("all persisted snapshots removed")
				return nil
			}

			if err := rt.Guard.Clear(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("persisted snapshot removed for actor %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every persisted snapshot")
	return cmd
}
