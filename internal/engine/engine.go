// Package engine hosts the protocol processor: the single serialized
// execution context that owns the project registry, applies wire documents,
// and drives the window/view rendering surfaces. Reader goroutines hand
// decoded documents to HandleDocument; all state mutation happens on one
// mailbox goroutine, in hand-off order, each document fully before the next.
package engine

import (
	"context"
	"fmt"

	"github.com/buildsock/buildsock/internal/actor"
	"github.com/buildsock/buildsock/internal/spinner"
)

// Options configures an Engine
type Options struct {
	// Spinners is the status spinner table; the embedded table is loaded
	// when nil.
	Spinners *spinner.Table
	// WindowManagers creates per-window rendering surfaces. Optional.
	WindowManagers WindowManagerFactory
	// ViewManagers creates per-buffer rendering surfaces. Optional.
	ViewManagers ViewManagerFactory
	// MailboxSize bounds the number of pending documents; producers block
	// when it is full. Defaults to 64.
	MailboxSize int
	// Sequential runs the processor inline on the caller's goroutine
	// instead of the mailbox loop. Deterministic, for tests.
	Sequential bool
}

// Engine is the public handle to the processor actor.
type Engine struct {
	proc *processor
	ref  *actor.ActorRef
}

// New creates an engine from the given options.
func New(opts Options) (*Engine, error) {
	spinners := opts.Spinners
	if spinners == nil {
		var err error
		spinners, err = spinner.LoadTable()
		if err != nil {
			return nil, fmt.Errorf("failed to load spinner table: %w", err)
		}
	}

	mailboxSize := opts.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = 64
	}

	proc := newProcessor(spinners, opts.WindowManagers, opts.ViewManagers)

	var refOpts []actor.ActorRefOption
	if opts.Sequential {
		refOpts = append(refOpts, actor.WithSequentialProcessing())
	}

	return &Engine{
		proc: proc,
		ref:  actor.NewActorRef(proc.ID(), proc, mailboxSize, refOpts...),
	}, nil
}

// Start starts the processor loop.
func (e *Engine) Start(ctx context.Context) error {
	return e.ref.Start(ctx)
}

// Stop stops the processor, draining nothing: pending mailbox messages are
// discarded, already-started documents finish first.
func (e *Engine) Stop(ctx context.Context) error {
	return e.ref.Stop(ctx)
}

// HandleDocument schedules one decoded wire document for processing. It is
// safe to call from any goroutine; documents are applied in the order they
// are handed off.
func (e *Engine) HandleDocument(v interface{}) error {
	return e.ref.Send(documentMsg{value: v})
}

// AttachWindow registers a window and its root folders.
func (e *Engine) AttachWindow(id string, folders []string) error {
	return e.ref.Send(attachWindowMsg{id: id, folders: folders})
}

// DetachWindow removes a window, destroying its manager if one was created.
func (e *Engine) DetachWindow(id string) error {
	return e.ref.Send(detachWindowMsg{id: id})
}

// AttachView registers a file-backed buffer. The view immediately receives
// any issues already matching its path.
func (e *Engine) AttachView(id, filePath string) error {
	return e.ref.Send(attachViewMsg{id: id, path: filePath})
}

// DetachView removes a buffer, destroying its manager if one was created.
func (e *Engine) DetachView(id string) error {
	return e.ref.Send(detachViewMsg{id: id})
}

// NotifySettingsChanged tells every live manager to re-render against the
// reloaded settings.
func (e *Engine) NotifySettingsChanged() error {
	return e.ref.Send(settingsChangedMsg{})
}

// Projects returns a snapshot of every registered project. Because the query
// rides the same mailbox as documents, the snapshot reflects everything
// handed off before the call, which also makes it a synchronization barrier
// in tests.
func (e *Engine) Projects() ([]ProjectSnapshot, error) {
	reply := make(chan []ProjectSnapshot, 1)
	if err := e.ref.Send(snapshotMsg{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case snaps := <-reply:
		return snaps, nil
	case <-e.ref.Done():
		// Stop does not drain the mailbox, so the request may never be
		// processed. The reply channel is buffered: take a late answer if
		// the processor got there first.
		select {
		case snaps := <-reply:
			return snaps, nil
		default:
			return nil, fmt.Errorf("engine stopped before the snapshot was taken")
		}
	}
}

// Project returns the snapshot of a single project by root path.
func (e *Engine) Project(path string) (ProjectSnapshot, bool, error) {
	snaps, err := e.Projects()
	if err != nil {
		return ProjectSnapshot{}, false, err
	}
	for _, snap := range snaps {
		if snap.Path == path {
			return snap, true, nil
		}
	}
	return ProjectSnapshot{}, false, nil
}
