package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <nickname>",
		Short: "Register an identity with the server",
		Long: `Register a nickname with the server and store the resulting identity
locally. All other commands use this stored identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			user, err := apiClient.Register(cmd.Context(), args[0])
			if err != nil {
				out.PrintError(err)
				return err
			}

			if err := cfg.SaveSession(Session{UserID: user.ID, Nickname: user.Nickname}); err != nil {
				out.PrintError(err)
				return err
			}

			out.Print(user)
			return nil
		},
	}
}
