package engine

import (
	"context"
	"runtime/debug"
	"sort"

	"github.com/buildsock/buildsock/internal/actor"
	"github.com/buildsock/buildsock/internal/issue"
	"github.com/buildsock/buildsock/internal/logger"
	"github.com/buildsock/buildsock/internal/protocol"
	"github.com/buildsock/buildsock/internal/spinner"
)

type windowState struct {
	folders []string
	manager WindowManager
}

type viewState struct {
	path string
	// manager is created lazily, the first time an issue matches this view
	manager ViewManager
	// lastIssues is what was last pushed; pushed distinguishes "pushed an
	// empty set" from "never pushed anything"
	lastIssues []*issue.Issue
	pushed     bool
}

// processor owns the project registry and every window/view record. It runs
// as an actor, so all fields are touched from a single goroutine.
type processor struct {
	spinners      *spinner.Table
	windowFactory WindowManagerFactory
	viewFactory   ViewManagerFactory

	projects map[string]*issue.Project
	windows  map[string]*windowState
	views    map[string]*viewState
}

func newProcessor(spinners *spinner.Table, wf WindowManagerFactory, vf ViewManagerFactory) *processor {
	if wf == nil {
		wf = func(string) WindowManager { return nopWindowManager{} }
	}
	if vf == nil {
		vf = func(string, string) ViewManager { return nopViewManager{} }
	}
	return &processor{
		spinners:      spinners,
		windowFactory: wf,
		viewFactory:   vf,
		projects:      make(map[string]*issue.Project),
		windows:       make(map[string]*windowState),
		views:         make(map[string]*viewState),
	}
}

// ID implements actor.Actor
func (p *processor) ID() string { return "buildsock-processor" }

// Start implements actor.Actor
func (p *processor) Start(ctx context.Context) error { return nil }

// Stop implements actor.Actor. Remaining managers are destroyed so no
// rendering surface outlives the engine.
func (p *processor) Stop(ctx context.Context) error {
	for _, ws := range p.windows {
		if ws.manager != nil {
			ws.manager.Destroy()
		}
	}
	for _, vs := range p.views {
		if vs.manager != nil {
			vs.manager.Destroy()
		}
	}
	p.projects = make(map[string]*issue.Project)
	p.windows = make(map[string]*windowState)
	p.views = make(map[string]*viewState)
	return nil
}

// Receive implements actor.Actor
func (p *processor) Receive(ctx context.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case documentMsg:
		p.handleDocument(m.value)
	case attachWindowMsg:
		p.windows[m.id] = &windowState{folders: m.folders}
	case detachWindowMsg:
		if ws, ok := p.windows[m.id]; ok {
			if ws.manager != nil {
				ws.manager.Destroy()
			}
			delete(p.windows, m.id)
		}
	case attachViewMsg:
		p.views[m.id] = &viewState{path: m.path}
		p.updateViews([]string{m.id})
	case detachViewMsg:
		if vs, ok := p.views[m.id]; ok {
			if vs.manager != nil {
				vs.manager.Destroy()
			}
			delete(p.views, m.id)
		}
	case settingsChangedMsg:
		for _, ws := range p.windows {
			if ws.manager != nil {
				ws.manager.HandleSettingsChanged()
			}
		}
		for _, vs := range p.views {
			if vs.manager != nil {
				vs.manager.HandleSettingsChanged()
			}
		}
	case snapshotMsg:
		m.reply <- p.snapshot()
	default:
		logger.Warn("Processor received unknown message type %q", msg.Type())
	}
	return nil
}

// handleDocument validates and applies one decoded wire document. Nothing it
// does may escape this boundary: a panic while applying commands is logged
// with its stack and the registry keeps whatever partial state the
// already-applied commands produced.
func (p *processor) handleDocument(v interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while applying document: %v\n%s", r, debug.Stack())
		}
	}()

	doc, ok := protocol.ParseDocument(v)
	if !ok {
		return
	}

	project, ok := p.projects[doc.Project]
	if !ok {
		project = issue.NewProject(doc.Project)
		p.projects[doc.Project] = project
	}

	// Only windows whose root folder equals the project path get notified
	// for this document.
	matched := p.matchedWindows(doc.Project)
	managers := make([]WindowManager, 0, len(matched))
	for _, id := range matched {
		managers = append(managers, p.windowManager(id))
	}

	needsViewUpdate := false
	shouldClear := false

	for _, cmd := range doc.Commands {
		switch protocol.GetString(cmd, "command", "") {
		case protocol.CommandShowIssues:
			raw := protocol.GetArray(cmd, "issues", nil)
			project.Issues = protocol.ParseIssues(raw, doc.Project)
			for _, m := range managers {
				m.ShowIssues(project)
			}
			needsViewUpdate = true

		case protocol.CommandHideIssues:
			project.Issues = nil
			for _, m := range managers {
				m.HideIssues()
			}
			needsViewUpdate = true

		case protocol.CommandShowStatus:
			project.StatusMessage = protocol.GetStringPtr(cmd, "message")
			project.StatusSpinner = p.spinners.Resolve(cmd["spinner"])
			for _, m := range managers {
				m.ShowStatus(project)
			}

		case protocol.CommandHideStatus:
			project.StatusMessage = nil
			project.StatusSpinner = nil
			for _, m := range managers {
				m.HideStatus()
			}

		case protocol.CommandClear:
			// Deferred: runs once after the whole command array, and
			// supersedes whatever earlier commands set up.
			shouldClear = true
		}
	}

	if shouldClear {
		for _, id := range matched {
			if ws, ok := p.windows[id]; ok && ws.manager != nil {
				ws.manager.Destroy()
				ws.manager = nil
			}
		}
		delete(p.projects, doc.Project)
	}

	// At most one global re-association pass per document.
	if needsViewUpdate || shouldClear {
		p.updateAllViews()
	}
}

func (p *processor) matchedWindows(projectPath string) []string {
	ids := make([]string, 0, len(p.windows))
	for id, ws := range p.windows {
		for _, folder := range ws.folders {
			if folder == projectPath {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// windowManager returns the window's manager, creating it on first use.
func (p *processor) windowManager(id string) WindowManager {
	ws := p.windows[id]
	if ws.manager == nil {
		ws.manager = p.windowFactory(id)
	}
	return ws.manager
}

func (p *processor) snapshot() []ProjectSnapshot {
	paths := make([]string, 0, len(p.projects))
	for path := range p.projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	snaps := make([]ProjectSnapshot, 0, len(paths))
	for _, path := range paths {
		project := p.projects[path]
		snaps = append(snaps, ProjectSnapshot{
			Path:          project.Path,
			Issues:        append([]*issue.Issue(nil), project.Issues...),
			StatusMessage: project.StatusMessage,
			StatusSpinner: append([]string(nil), project.StatusSpinner...),
		})
	}
	return snaps
}
