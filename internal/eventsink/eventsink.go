// Package eventsink is the post-commit, write-only notification fan-out the
// core pushes into after a mutation's transaction commits successfully.
// Per §5 "Shared resource policy", the core never blocks on a subscriber and
// never notifies before commit; the optional SSE transport mentioned in §1
// is an external collaborator that would subscribe to a Sink, not a
// component this package implements itself.
//
// Grounded on the teacher's internal/webhook package (building a payload
// from committed action rows and fanning it out to a remote collaborator),
// reshaped here as an in-process pub/sub bus instead of an HTTP dispatch,
// since no MCP/SSE transport lives in this module.
package eventsink

import (
	"context"
	"sync"
	"time"

	"github.com/hallowell/workitem/internal/models"
)

// Event is the notification emitted once per committed mutation.
type Event struct {
	ActionID    string
	ActionType  models.ActionType
	WorkItemID  string
	Description string
	Timestamp   time.Time
}

// Sink is the write-only interface MutationEngine and UndoRedo publish to.
// Publish must not be called until after the owning transaction commits;
// implementations must not return an error that could cause a caller to
// retry the mutation, since the write already happened.
type Sink interface {
	Publish(ctx context.Context, evt Event)
}

// NoopSink discards every event. It is the default Sink so callers that
// don't care about notifications pay no cost.
type NoopSink struct{}

// Publish does nothing.
func (NoopSink) Publish(ctx context.Context, evt Event) {}

// Bus is an in-process fan-out Sink: every Subscribe'd channel receives a
// copy of each published event, delivered without blocking the publisher.
// A slow or absent subscriber drops events rather than backing up the core.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Publish fans evt out to every current subscriber. Per the write-only
// contract, Publish never returns an error and never blocks on a slow
// reader: a subscriber channel that's full simply misses the event.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new channel of the given buffer size and returns it
// plus an unsubscribe function the caller must call when done listening.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}
