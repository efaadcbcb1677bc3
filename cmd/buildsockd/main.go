// buildsockd hosts the build socket ingestion engine: it listens on a local
// unix socket for diagnostics documents from build and lint tools and keeps
// the per-project issue state current.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/buildsock/buildsock/internal/config"
	"github.com/buildsock/buildsock/internal/engine"
	"github.com/buildsock/buildsock/internal/logger"
	"github.com/buildsock/buildsock/internal/pidfile"
	"github.com/buildsock/buildsock/internal/socketserver"
)

type stringSlice []string

func (s *stringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	if value == "" {
		return fmt.Errorf("value cannot be empty")
	}
	*s = append(*s, value)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// daemon ties the engine, the listener and the settings watcher together.
// The settings watcher may swap the server while the process runs, so access
// goes through the mutex.
type daemon struct {
	settingsPath string
	overrides    overrides

	mu       sync.Mutex
	settings *config.Settings
	server   *socketserver.Server
	engine   *engine.Engine
}

// overrides holds the flag values that take precedence over the settings
// file. They must survive hot-reloads: a reload re-reads the file, so the
// overrides are re-applied to every freshly loaded Settings.
type overrides struct {
	socketPath string
	logLevel   string
}

func (o overrides) apply(s *config.Settings) {
	if o.socketPath != "" {
		s.SocketPath = o.socketPath
	}
	if o.logLevel != "" {
		s.LogLevel = o.logLevel
	}
}

func run() (err error) {
	var projects stringSlice
	settingsPath := flag.String("settings", config.GetSettingsPath(), "path to the settings file")
	socketPath := flag.String("socket", "", "socket path (overrides settings)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error, none (overrides settings)")
	flag.Var(&projects, "project", "project root to monitor (repeatable)")
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	ov := overrides{socketPath: *socketPath, logLevel: *logLevel}
	ov.apply(settings)

	if err := logger.Init(logger.ParseLevel(settings.LogLevel), settings.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	pf := pidfile.New(settings.PidfilePath)
	if pf.Running() {
		pid, _ := pf.Read()
		return fmt.Errorf("another buildsockd is already running (pid %d)", pid)
	}
	if err := pf.Write(); err != nil {
		return err
	}
	defer pf.Remove()

	eng, err := engine.New(engine.Options{
		WindowManagers: newLogWindowManager,
		ViewManagers:   newLogViewManager,
	})
	if err != nil {
		return err
	}
	if err := eng.Start(context.Background()); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := eng.Stop(stopCtx); stopErr != nil {
			logger.Warn("Engine stop: %v", stopErr)
		}
	}()

	// Monitored roots act as the daemon's windows; their managers log what a
	// real editor surface would render.
	for _, root := range projects {
		if attachErr := eng.AttachWindow(root, []string{root}); attachErr != nil {
			return attachErr
		}
	}

	d := &daemon{
		settingsPath: *settingsPath,
		overrides:    ov,
		settings:     settings,
		engine:       eng,
	}

	d.server = socketserver.NewServer(settings.SocketPath, d.handleDocument)
	if err := d.server.Start(); err != nil {
		return err
	}
	defer d.stopServer()

	watcher, err := config.Watch(*settingsPath, d.handleSettingsChanged)
	if err != nil {
		// The daemon still works without hot-reload.
		logger.Warn("Settings watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	logger.Info("buildsockd ready on %s", settings.SocketPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received %s, shutting down", sig)

	return nil
}

func (d *daemon) handleDocument(v interface{}) {
	if err := d.engine.HandleDocument(v); err != nil {
		logger.Warn("Dropping document: %v", err)
	}
}

func (d *daemon) stopServer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.server != nil {
		d.server.Stop()
	}
}

// handleSettingsChanged reloads the settings file. Flag overrides are
// re-applied on top, so an operator-supplied socket path or log level is
// never undone by an unrelated edit to the file. A changed socket path
// restarts the listener on the new address; live rendering surfaces are told
// to re-render either way.
func (d *daemon) handleSettingsChanged() {
	settings, err := config.Load(d.settingsPath)
	if err != nil {
		logger.Warn("Settings reload failed: %v", err)
		return
	}
	d.overrides.apply(settings)

	d.mu.Lock()
	defer d.mu.Unlock()

	logger.Global().SetLevel(logger.ParseLevel(settings.LogLevel))

	if settings.SocketPath != d.settings.SocketPath {
		logger.Info("Socket path changed: %s -> %s", d.settings.SocketPath, settings.SocketPath)
		d.server.Stop()
		d.server = socketserver.NewServer(settings.SocketPath, d.handleDocument)
		if err := d.server.Start(); err != nil {
			logger.Error("Failed to restart listener: %v", err)
		}
	}

	d.settings = settings

	if err := d.engine.NotifySettingsChanged(); err != nil {
		logger.Warn("Settings change notification: %v", err)
	}
}
