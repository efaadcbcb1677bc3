package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/buildsock/buildsock/internal/socketclient"
)

var (
	okColor  = color.New(color.FgGreen, color.Bold)
	errColor = color.New(color.FgRed, color.Bold)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe whether a daemon is listening on the socket",
	Long:  "Probe the socket path and report whether a live daemon accepts connections there. Exits non-zero when nothing is listening.",
	RunE: func(_ *cobra.Command, _ []string) error {
		path := socketPath()
		if !socketclient.Detect(path) {
			errColor.Fprintf(os.Stderr, "no daemon listening at %s\n", path)
			os.Exit(1)
		}
		okColor.Printf("daemon listening at %s\n", path)
		return nil
	},
}
