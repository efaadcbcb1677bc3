// Package actor provides a minimal mailbox-backed actor runtime. A single
// goroutine drains the mailbox in FIFO order, so everything an actor owns is
// mutated from exactly one goroutine without locks.
package actor

import (
	"context"
	"fmt"
	"sync"

	"github.com/buildsock/buildsock/internal/logger"
)

// Message represents a message sent to an actor
type Message interface {
	Type() string
}

// Actor processes messages delivered through an ActorRef
type Actor interface {
	// Receive processes one incoming message
	Receive(ctx context.Context, msg Message) error
	// Start starts the actor
	Start(ctx context.Context) error
	// Stop stops the actor gracefully
	Stop(ctx context.Context) error
	// ID returns the actor's unique identifier
	ID() string
}

// ActorRef is a reference to a running actor for sending messages
type ActorRef struct {
	id      string
	mailbox chan Message
	actor   Actor
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	mu         sync.RWMutex
	ctx        context.Context
	stopped    bool
	stoppedCh  chan struct{}
	sequential bool
	sequenceMu sync.Mutex
}

// ActorRefOption configures an ActorRef
type ActorRefOption func(*ActorRef)

// WithSequentialProcessing makes Send invoke Receive inline instead of going
// through the mailbox goroutine. Send then blocks until Receive returns,
// which keeps tests deterministic.
func WithSequentialProcessing() ActorRefOption {
	return func(ref *ActorRef) {
		ref.sequential = true
	}
}

// NewActorRef creates a new actor reference with the given ID, actor
// implementation and mailbox size.
func NewActorRef(id string, actor Actor, mailboxSize int, opts ...ActorRefOption) *ActorRef {
	ref := &ActorRef{
		id:        id,
		actor:     actor,
		mailbox:   make(chan Message, mailboxSize),
		stoppedCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ref)
	}
	return ref
}

// ID returns the actor's ID
func (ref *ActorRef) ID() string {
	return ref.id
}

// Done returns a channel closed when Stop begins. Callers waiting on a reply
// from the actor must select on it: the mailbox is not drained on stop, so a
// still-enqueued message may never be processed.
func (ref *ActorRef) Done() <-chan struct{} {
	return ref.stoppedCh
}

// Send enqueues a message for the actor. Messages are processed in the order
// they are accepted; when the mailbox is full Send blocks rather than drop,
// so a burst of messages is never reordered or lost. Send fails when the
// actor has stopped, or when it has not started yet and the mailbox is
// already full: before Start nothing drains the mailbox, so blocking there
// could never end.
func (ref *ActorRef) Send(msg Message) error {
	ref.mu.RLock()
	if ref.stopped {
		ref.mu.RUnlock()
		return fmt.Errorf("actor %s is stopped", ref.id)
	}
	sequential := ref.sequential
	ctx := ref.ctx
	ref.mu.RUnlock()

	if sequential {
		ref.sequenceMu.Lock()
		defer ref.sequenceMu.Unlock()
		if err := ref.actor.Receive(ctx, msg); err != nil {
			logger.Error("Actor %s error processing message: %v", ref.id, err)
		}
		return nil
	}

	if ctx == nil {
		// Not started yet; queue for the loop to pick up on Start.
		select {
		case ref.mailbox <- msg:
			return nil
		default:
			return fmt.Errorf("actor %s is not started and its mailbox is full", ref.id)
		}
	}

	select {
	case ref.mailbox <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("actor %s is stopped", ref.id)
	}
}

// Start starts the actor's message processing loop
func (ref *ActorRef) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	ref.cancel = cancel

	if err := ref.actor.Start(ctx); err != nil {
		cancel()
		return err
	}

	ref.mu.Lock()
	ref.ctx = ctx
	ref.mu.Unlock()

	if ref.sequential {
		return nil
	}

	ref.wg.Add(1)
	go ref.run(ctx)
	return nil
}

// Stop stops the actor, waiting for the message loop to finish
func (ref *ActorRef) Stop(ctx context.Context) error {
	ref.mu.Lock()
	if ref.stopped {
		ref.mu.Unlock()
		return nil
	}
	ref.stopped = true
	close(ref.stoppedCh)
	ref.mu.Unlock()

	if ref.cancel != nil {
		ref.cancel()
	}

	done := make(chan struct{})
	go func() {
		ref.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return ref.actor.Stop(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the actor's message processing loop. Receive errors are logged and
// the loop continues; a failing message must never stall the mailbox.
func (ref *ActorRef) run(ctx context.Context) {
	defer ref.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ref.mailbox:
			if err := ref.actor.Receive(ctx, msg); err != nil {
				logger.Error("Actor %s error processing message: %v", ref.id, err)
			}
		}
	}
}
