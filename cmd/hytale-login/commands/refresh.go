package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored credentials if they expire within the refresh margin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, _, _, err := buildManager()
			if err != nil {
				return err
			}

			if err := mgr.InitializeFromStore(); err != nil {
				return fmt.Errorf("restore from store: %w", err)
			}
			if err := mgr.CheckAndRefresh(); err != nil {
				return fmt.Errorf("refresh: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "refresh check complete")
			return nil
		},
	}
}
