package main

import (
	"github.com/spf13/cobra"

	"github.com/buildsock/buildsock/internal/socketclient"
)

var flagSpinner string

var showStatusCmd = &cobra.Command{
	Use:   "show-status <message>",
	Short: "Set the project's status message",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		project, err := projectRoot()
		if err != nil {
			return err
		}
		var spinner interface{}
		if flagSpinner != "" {
			spinner = flagSpinner
		}
		return deliver(socketclient.NewRequest(project).ShowStatus(args[0], spinner))
	},
}

var hideStatusCmd = &cobra.Command{
	Use:   "hide-status",
	Short: "Remove the project's status message",
	RunE: func(_ *cobra.Command, _ []string) error {
		project, err := projectRoot()
		if err != nil {
			return err
		}
		return deliver(socketclient.NewRequest(project).HideStatus())
	},
}

func init() {
	showStatusCmd.Flags().StringVar(&flagSpinner, "spinner", "", "named spinner animation to show next to the message")
}
