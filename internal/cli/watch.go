package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/stream"
	"github.com/davincicode/client-go/internal/testutil"
)

// watchedEvent is the JSON-lines shape of one observed event
type watchedEvent struct {
	Time  time.Time `json:"time"`
	Topic string    `json:"topic"`
	Data  string    `json:"data"`
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <code>",
		Short: "Stream a room's raw events",
		Long: `Connect to both of the room's event streams (room lifecycle and in-game
events) and print everything as it arrives. Useful for debugging and for
following a game without joining it.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchEvents(model.RoomCode(args[0]), cfg.Output == "json")
		},
	}
}

func watchEvents(code model.RoomCode, jsonOutput bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	sub, err := stream.Dial(ctx, apiClient.StreamClient(), cfg.ServerURL, code, testutil.NopLogger())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer sub.Close()

	if !jsonOutput {
		fmt.Printf("Watching room %s\n", code)
	}

	for msg := range sub.Messages() {
		printWatchedEvent(msg, jsonOutput)
	}

	if err := sub.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printWatchedEvent(msg stream.Message, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(watchedEvent{
			Time:  now,
			Topic: string(msg.Topic),
			Data:  string(msg.Data),
		})
		fmt.Println(string(data))
		return
	}

	display := string(msg.Data)
	if len(display) > 120 {
		display = display[:120] + "..."
	}
	fmt.Printf("[%s] %-4s %s\n", now.Format("15:04:05"), msg.Topic, display)
}
