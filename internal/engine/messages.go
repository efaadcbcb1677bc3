package engine

import "github.com/buildsock/buildsock/internal/issue"

// Message type constants for the processor mailbox
const (
	msgTypeDocument        = "document"
	msgTypeAttachWindow    = "attach_window"
	msgTypeDetachWindow    = "detach_window"
	msgTypeAttachView      = "attach_view"
	msgTypeDetachView      = "detach_view"
	msgTypeSettingsChanged = "settings_changed"
	msgTypeSnapshot        = "snapshot"
)

type documentMsg struct {
	value interface{}
}

func (documentMsg) Type() string { return msgTypeDocument }

type attachWindowMsg struct {
	id      string
	folders []string
}

func (attachWindowMsg) Type() string { return msgTypeAttachWindow }

type detachWindowMsg struct {
	id string
}

func (detachWindowMsg) Type() string { return msgTypeDetachWindow }

type attachViewMsg struct {
	id   string
	path string
}

func (attachViewMsg) Type() string { return msgTypeAttachView }

type detachViewMsg struct {
	id string
}

func (detachViewMsg) Type() string { return msgTypeDetachView }

type settingsChangedMsg struct{}

func (settingsChangedMsg) Type() string { return msgTypeSettingsChanged }

// ProjectSnapshot is a copy of one project's state, safe to read outside the
// processor goroutine.
type ProjectSnapshot struct {
	Path          string
	Issues        []*issue.Issue
	StatusMessage *string
	StatusSpinner []string
}

type snapshotMsg struct {
	reply chan []ProjectSnapshot
}

func (snapshotMsg) Type() string { return msgTypeSnapshot }
