package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/session"
	"github.com/davincicode/client-go/internal/stream"
	"github.com/davincicode/client-go/internal/testutil"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <code>",
		Short: "Join a room and play interactively",
		Long: `Connect to a room and play from the terminal. The session stays live
until the room is deleted or you quit.

Commands while playing:
  start                   deal a new game (host only)
  draw <white|black>      draw a card of that color
  guess <cardId> <number> guess an opponent card's number
  pass                    end your turn after a correct guess
  state                   reprint the current state
  quit                    leave the room and exit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			sess, err := cfg.RequireSession()
			if err != nil {
				out.PrintError(err)
				return err
			}
			return playSession(model.RoomCode(args[0]), sess, out)
		},
	}
}

func playSession(code model.RoomCode, sess Session, out *Output) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger := testutil.NopLogger()
	if cfg.Output == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	mgr := session.NewManager(session.ManagerConfig{
		RoomCode: code,
		SelfID:   sess.UserID,
		API:      apiClient,
		Dial: func(ctx context.Context) (session.Subscription, error) {
			return stream.Dial(ctx, apiClient.StreamClient(), apiClient.ServerURL(), code, logger)
		},
		Clock:    clock.New(),
		Logger:   logger,
		OnUpdate: func(s session.SessionState) { out.Print(s) },
	})

	runErr := make(chan error, 1)
	go func() { runErr <- mgr.Run(ctx) }()

	select {
	case <-mgr.Ready():
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			out.PrintError(err)
			return err
		}
		return nil
	}
	out.PrintMessage(fmt.Sprintf("Connected to room %s as %s", code, sess.Nickname))

	go readCommands(ctx, cancel, mgr, out)

	err := <-runErr
	if err != nil && !errors.Is(err, context.Canceled) {
		out.PrintError(err)
		return err
	}
	out.PrintMessage("Session ended")
	return nil
}

// readCommands drives the session from stdin until quit or EOF
func readCommands(ctx context.Context, cancel context.CancelFunc, mgr *session.Manager, out *Output) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			cancel()
			return
		}
		if err := dispatchCommand(ctx, mgr, out, fields); err != nil {
			out.PrintError(err)
		}
	}
	cancel()
}

func dispatchCommand(ctx context.Context, mgr *session.Manager, out *Output, fields []string) error {
	switch fields[0] {
	case "start":
		return mgr.StartGame(ctx)

	case "draw":
		if len(fields) != 2 {
			return errors.New("usage: draw <white|black>")
		}
		color, err := parseColor(fields[1])
		if err != nil {
			return err
		}
		return mgr.Draw(ctx, color)

	case "guess":
		if len(fields) != 3 {
			return errors.New("usage: guess <cardId> <number>")
		}
		cardID, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("bad card id %q", fields[1])
		}
		number, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad number %q", fields[2])
		}
		state := mgr.State()
		target, ok := state.Cards[cardID]
		if !ok {
			return model.ErrCardNotFound
		}
		return mgr.Guess(ctx, cardID, number, target.Color)

	case "pass":
		return mgr.PassTurn(ctx)

	case "state":
		out.Print(mgr.State())
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseColor(s string) (model.CardColor, error) {
	switch strings.ToUpper(s) {
	case string(model.ColorWhite):
		return model.ColorWhite, nil
	case string(model.ColorBlack):
		return model.ColorBlack, nil
	default:
		return "", fmt.Errorf("unknown color %q (want white or black)", s)
	}
}
