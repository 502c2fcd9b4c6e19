package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davincicode/client-go/internal/model"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string

	// Session is the locally stored identity, loaded from SessionFile
	Session Session
}

// Session is the registered identity persisted between invocations
type Session struct {
	UserID   model.ParticipantID `json:"userId"`
	Nickname string              `json:"nickname"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("DVC_SERVER", "http://localhost:8080"),
		SessionFile: getEnvOrDefault("DVC_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
	}
}

// LoadSession loads the stored identity, if any
func (c *Config) LoadSession() error {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not registered yet is fine
		}
		return err
	}

	if err := json.Unmarshal(data, &c.Session); err != nil {
		return fmt.Errorf("corrupt session file %s: %w", c.SessionFile, err)
	}
	return nil
}

// SaveSession persists the identity for future invocations
func (c *Config) SaveSession(session Session) error {
	c.Session = session

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

// RequireSession returns the stored identity or an instruction to register
func (c *Config) RequireSession() (Session, error) {
	if c.Session.UserID == "" {
		return Session{}, fmt.Errorf("not registered; run 'dvc register <nickname>' first")
	}
	return c.Session, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dvc/session"
	}
	return filepath.Join(home, ".dvc", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
