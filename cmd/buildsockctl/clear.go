package main

import (
	"github.com/spf13/cobra"

	"github.com/buildsock/buildsock/internal/socketclient"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Tear down all state the daemon holds for the project",
	RunE: func(_ *cobra.Command, _ []string) error {
		project, err := projectRoot()
		if err != nil {
			return err
		}
		return deliver(socketclient.NewRequest(project).Clear())
	},
}
