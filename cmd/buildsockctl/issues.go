package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildsock/buildsock/internal/socketclient"
)

var showIssuesCmd = &cobra.Command{
	Use:   "show-issues [file]",
	Short: "Replace the project's issue list",
	Long:  "Read a JSON array of issues from the given file (or stdin when omitted or \"-\") and publish it as the project's issue list. An empty array clears the list without hiding the panel.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShowIssues,
}

var hideIssuesCmd = &cobra.Command{
	Use:   "hide-issues",
	Short: "Drop the project's issue list",
	RunE: func(_ *cobra.Command, _ []string) error {
		project, err := projectRoot()
		if err != nil {
			return err
		}
		return deliver(socketclient.NewRequest(project).HideIssues())
	},
}

func runShowIssues(_ *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open issue file: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read issues: %w", err)
	}

	var issues []socketclient.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return fmt.Errorf("failed to parse issue array: %w", err)
	}

	project, err := projectRoot()
	if err != nil {
		return err
	}
	return deliver(socketclient.NewRequest(project).ShowIssues(issues...))
}
