package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			status, err := apiClient.Health(cmd.Context())
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Server status: " + status)
			return nil
		},
	}
}
