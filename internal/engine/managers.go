package engine

import "github.com/buildsock/buildsock/internal/issue"

// WindowManager is the per-window rendering surface driven by the processor.
// Implementations own output panels, status bars and similar UI; they receive
// project references to re-render from and must never mutate them.
type WindowManager interface {
	// ShowIssues renders the project's current issue set
	ShowIssues(project *issue.Project)
	// HideIssues hides the issue surface
	HideIssues()
	// ShowStatus renders the project's status message and spinner
	ShowStatus(project *issue.Project)
	// HideStatus clears the status surface
	HideStatus()
	// HandleSettingsChanged re-renders after a settings reload
	HandleSettingsChanged()
	// Destroy tears the surface down
	Destroy()
}

// ViewManager is the per-buffer rendering surface. It receives the subset of
// issues whose path matches the buffer's file; an empty set clears previously
// shown diagnostics.
type ViewManager interface {
	// SetIssues replaces the buffer's displayed issue set
	SetIssues(issues []*issue.Issue)
	// HandleSettingsChanged re-renders after a settings reload
	HandleSettingsChanged()
	// Destroy tears the surface down
	Destroy()
}

// WindowManagerFactory creates the manager for a window the first time the
// processor needs to notify it.
type WindowManagerFactory func(windowID string) WindowManager

// ViewManagerFactory creates the manager for a buffer the first time an
// issue matches its file path.
type ViewManagerFactory func(viewID, filePath string) ViewManager

type nopWindowManager struct{}

func (nopWindowManager) ShowIssues(*issue.Project) {}
func (nopWindowManager) HideIssues()               {}
func (nopWindowManager) ShowStatus(*issue.Project) {}
func (nopWindowManager) HideStatus()               {}
func (nopWindowManager) HandleSettingsChanged()    {}
func (nopWindowManager) Destroy()                  {}

type nopViewManager struct{}

func (nopViewManager) SetIssues([]*issue.Issue) {}
func (nopViewManager) HandleSettingsChanged()   {}
func (nopViewManager) Destroy()                 {}
