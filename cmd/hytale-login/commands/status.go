package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hytalecompat/gameserver/internal/authmanager"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current stored login state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, _, _, err := buildManager()
			if err != nil {
				return err
			}

			if err := mgr.InitializeFromStore(); err != nil {
				return fmt.Errorf("restore from store: %w", err)
			}

			snap := mgr.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:  %s\n", snap.State)
			fmt.Fprintf(out, "mode:   %s\n", snap.Mode)
			if snap.State == authmanager.StateAuthenticated {
				fmt.Fprintf(out, "user:   %s\n", snap.Username)
				fmt.Fprintf(out, "uuid:   %s\n", snap.ProfileUUID)
			}
			if snap.State == authmanager.StateAwaitingProfileSelection {
				fmt.Fprintln(out, "profiles:")
				for _, p := range snap.Profiles {
					fmt.Fprintf(out, "  %s  %s\n", p.UUID, p.Username)
				}
			}
			if snap.LastError != "" {
				fmt.Fprintf(out, "error:  %s\n", snap.LastError)
			}
			return nil
		},
	}
}
