// buildsockctl talks to a running buildsockd from the command line. It
// builds a wire document from the invoked subcommand and delivers it over
// the unix socket, which makes it usable from build scripts and CI hooks.
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildsock/buildsock/internal/config"
	"github.com/buildsock/buildsock/internal/socketclient"
)

var (
	flagSocket  string
	flagProject string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "buildsockctl",
	Short:         "Send diagnostics to a running buildsockd",
	Long:          "buildsockctl builds protocol documents from its subcommands and delivers them to the build socket daemon over its unix socket.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagSocket, "socket", "", "socket path (default from settings)")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project root the document targets (default cwd)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 5*time.Second, "delivery timeout")

	rootCmd.AddCommand(showIssuesCmd)
	rootCmd.AddCommand(hideIssuesCmd)
	rootCmd.AddCommand(showStatusCmd)
	rootCmd.AddCommand(hideStatusCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// socketPath resolves the socket to talk to: the --socket flag when given,
// otherwise whatever the daemon-side settings file says.
func socketPath() string {
	if flagSocket != "" {
		return flagSocket
	}
	settings, err := config.Load(config.GetSettingsPath())
	if err != nil {
		return config.DefaultSocketPath
	}
	return settings.SocketPath
}

// projectRoot resolves the project the document targets, defaulting to the
// current working directory as an absolute path.
func projectRoot() (string, error) {
	if flagProject != "" {
		return filepath.Abs(flagProject)
	}
	return os.Getwd()
}

// deliver sends a finished request within the configured timeout.
func deliver(req *socketclient.Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	return socketclient.NewClient(socketPath()).Send(ctx, req)
}
