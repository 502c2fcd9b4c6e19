package cli

import (
	"github.com/spf13/cobra"

	"github.com/davincicode/client-go/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room operations",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomStartCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room with yourself as host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			sess, err := cfg.RequireSession()
			if err != nil {
				out.PrintError(err)
				return err
			}

			room, err := apiClient.CreateRoom(cmd.Context(), title, sess.UserID)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(room)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Room title")
	return cmd
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms waiting for a second player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			rooms, err := apiClient.ListWaitingRooms(cmd.Context())
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(rooms)
			return nil
		},
	}
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			room, err := apiClient.FetchRoom(cmd.Context(), model.RoomCode(args[0]))
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(room)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room as guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			sess, err := cfg.RequireSession()
			if err != nil {
				out.PrintError(err)
				return err
			}

			room, err := apiClient.Join(cmd.Context(), model.RoomCode(args[0]), sess.UserID)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(room)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <code>",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			sess, err := cfg.RequireSession()
			if err != nil {
				out.PrintError(err)
				return err
			}

			if err := apiClient.Leave(cmd.Context(), model.RoomCode(args[0]), sess.UserID); err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Left room " + args[0])
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start the game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			sess, err := cfg.RequireSession()
			if err != nil {
				out.PrintError(err)
				return err
			}

			if err := apiClient.StartGame(cmd.Context(), model.RoomCode(args[0]), sess.UserID); err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Game started in room " + args[0])
			return nil
		},
	}
}
