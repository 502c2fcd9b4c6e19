package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}
	o.printText(data)
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
		return
	}
	fmt.Println(msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.User:
		o.printUser(v)
	case model.Room:
		o.printRoom(v)
	case []model.Room:
		o.printRoomList(v)
	case session.SessionState:
		o.printSessionState(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u model.User) {
	fmt.Printf("Registered as %s (%s)\n", u.Nickname, u.ID)
}

func (o *Output) printRoom(r model.Room) {
	fmt.Printf("Room: %s (%s)\n", r.Title, r.RoomCode)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Host: %s\n", r.HostNickname)
	if r.HasGuest() {
		fmt.Printf("Guest: %s\n", r.GuestNickname)
	} else {
		fmt.Println("Guest: (open seat)")
	}
	if r.WinnerNickname != "" {
		fmt.Printf("Winner: %s\n", r.WinnerNickname)
	}
}

func (o *Output) printRoomList(rooms []model.Room) {
	if len(rooms) == 0 {
		fmt.Println("No rooms waiting for players")
		return
	}
	fmt.Printf("Rooms waiting for players (%d):\n", len(rooms))
	for _, r := range rooms {
		fmt.Printf("  %s  %-24s host: %s\n", r.RoomCode, r.Title, r.HostNickname)
	}
}

func (o *Output) printSessionState(s session.SessionState) {
	fmt.Printf("\n=== %s [%s] ===\n", s.Room.Title, s.Phase)

	opponent := s.Room.NicknameOf(s.CurrentTurnID)
	switch {
	case s.Phase == session.PhaseWaiting:
		fmt.Println("Waiting for the game to start")
	case s.Phase == session.PhaseEnded:
		fmt.Printf("Game over. Winner: %s\n", s.WinnerNickname)
	case s.IsMyTurn():
		fmt.Println("Your turn")
	default:
		fmt.Printf("Waiting for %s\n", opponent)
	}

	if len(s.Cards) > 0 {
		oppID, _ := s.Room.Opponent(s.SelfID)
		fmt.Printf("\n%s:\n  %s\n", s.Room.NicknameOf(oppID), formatHand(s.OpponentHand(), false))
		fmt.Printf("You:\n  %s\n", formatHand(s.MyHand(), true))
	}
	if s.DeckEmpty {
		fmt.Println("\nThe deck is empty")
	}
	if s.Notice != "" {
		fmt.Printf("\n! %s\n", s.Notice)
	}
	if s.LastOutcome != nil {
		if s.LastOutcome.Correct {
			fmt.Printf("\nCorrect! %s's card was %d\n", s.LastOutcome.OwnerNickname, s.LastOutcome.GuessedNumber)
		} else {
			fmt.Printf("\nWrong guess (%d); one of your cards was revealed\n", s.LastOutcome.GuessedNumber)
		}
	}

	if s.IsMyTurn() && s.Phase == session.PhasePlaying {
		var actions []string
		if s.CanDraw() {
			actions = append(actions, "draw <white|black>")
		}
		if s.CanGuess() {
			actions = append(actions, "guess <cardId> <number>")
		}
		if s.CanPass() {
			actions = append(actions, "pass")
		}
		fmt.Printf("\nActions: %s\n", strings.Join(actions, " | "))
	}
}

// formatHand renders one hand. Closed opponent cards show only their color;
// the local player always sees their own numbers.
func formatHand(cards []model.Card, mine bool) string {
	if len(cards) == 0 {
		return "(no cards)"
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		color := strings.ToLower(string(c.Color))
		switch {
		case c.IsOpen():
			parts = append(parts, fmt.Sprintf("[#%d %s %d]", c.ID, color, c.Number))
		case mine:
			parts = append(parts, fmt.Sprintf("(#%d %s %d)", c.ID, color, c.Number))
		default:
			parts = append(parts, fmt.Sprintf("(#%d %s ?)", c.ID, color))
		}
	}
	return strings.Join(parts, " ")
}
