package main

import (
	"strconv"

	"github.com/buildsock/buildsock/internal/engine"
	"github.com/buildsock/buildsock/internal/issue"
	"github.com/buildsock/buildsock/internal/logger"
)

// The daemon has no editor to draw into; its managers log what a real
// rendering surface would do, which doubles as an audit trail of every
// notification the processor emits.

type logWindowManager struct {
	windowID string
}

func newLogWindowManager(windowID string) engine.WindowManager {
	return &logWindowManager{windowID: windowID}
}

func (m *logWindowManager) ShowIssues(project *issue.Project) {
	logger.Info("[%s] show issues: %d for %s", m.windowID, len(project.Issues), project.Path)
	for _, is := range project.Issues {
		line := formatIssue(is)
		logger.Info("[%s]   %s", m.windowID, line)
	}
}

func (m *logWindowManager) HideIssues() {
	logger.Info("[%s] hide issues", m.windowID)
}

func (m *logWindowManager) ShowStatus(project *issue.Project) {
	message := ""
	if project.StatusMessage != nil {
		message = *project.StatusMessage
	}
	if len(project.StatusSpinner) > 0 {
		logger.Info("[%s] status: %s (spinner, %d frames)", m.windowID, message, len(project.StatusSpinner))
	} else {
		logger.Info("[%s] status: %s", m.windowID, message)
	}
}

func (m *logWindowManager) HideStatus() {
	logger.Info("[%s] hide status", m.windowID)
}

func (m *logWindowManager) HandleSettingsChanged() {
	logger.Debug("[%s] settings changed", m.windowID)
}

func (m *logWindowManager) Destroy() {
	logger.Info("[%s] destroyed", m.windowID)
}

type logViewManager struct {
	viewID string
	path   string
}

func newLogViewManager(viewID, path string) engine.ViewManager {
	return &logViewManager{viewID: viewID, path: path}
}

func (m *logViewManager) SetIssues(issues []*issue.Issue) {
	logger.Info("[view %s] %d issue(s) for %s", m.viewID, len(issues), m.path)
}

func (m *logViewManager) HandleSettingsChanged() {
	logger.Debug("[view %s] settings changed", m.viewID)
}

func (m *logViewManager) Destroy() {
	logger.Debug("[view %s] destroyed", m.viewID)
}

// formatIssue renders an issue the way the output panel does:
// "file:line:column message".
func formatIssue(is *issue.Issue) string {
	out := ""
	if is.File != nil {
		out = *is.File
		if is.Line != nil {
			out += ":" + strconv.Itoa(*is.Line)
			if is.Column != nil {
				out += ":" + strconv.Itoa(*is.Column)
			}
		}
		out += " "
	}
	return out + is.Message
}
