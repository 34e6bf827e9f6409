package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the stored login credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, _, err := buildManager()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear credential store: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stored credentials cleared")
			return nil
		},
	}
}
