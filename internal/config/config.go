// Package config loads the buildsock settings file. Settings follow the same
// discipline as the wire protocol: a missing or wrong-typed entry falls back
// to its default, it never fails the load.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/buildsock/buildsock/internal/protocol"
)

// DefaultSocketPath is where the listener binds when the settings file does
// not say otherwise.
const DefaultSocketPath = "/tmp/sublime.buildsock.sock"

// Settings represents the daemon configuration
type Settings struct {
	// SocketPath is the filesystem address of the listening socket
	SocketPath string `json:"socket_path"`
	// LogLevel is one of debug, info, warn, error, none
	LogLevel string `json:"log_level"`
	// LogPath is the log file location
	LogPath string `json:"log_path"`
	// PidfilePath is the pidfile location
	PidfilePath string `json:"pidfile_path"`
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "buildsock")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "buildsock")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "buildsock")
	}
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	stateDir := defaultStateDir()

	return &Settings{
		SocketPath:  DefaultSocketPath,
		LogLevel:    "info",
		LogPath:     filepath.Join(stateDir, "buildsockd.log"),
		PidfilePath: filepath.Join(stateDir, "buildsockd.pid"),
	}
}

// GetSettingsPath returns the default settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "buildsock", "settings.json")
}

// Load reads the settings file at path over DefaultSettings. A missing file
// yields the defaults. Each known key is read through a typed accessor, so a
// wrong-typed value falls back to its default instead of failing; unknown
// keys are ignored.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := protocol.GetMap(raw, map[string]interface{}{})
	settings.SocketPath = protocol.GetString(m, "socket_path", settings.SocketPath)
	settings.LogLevel = protocol.GetString(m, "log_level", settings.LogLevel)
	settings.LogPath = protocol.GetString(m, "log_path", settings.LogPath)
	settings.PidfilePath = protocol.GetString(m, "pidfile_path", settings.PidfilePath)

	return settings, nil
}

// Save writes the settings to path
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
