// Package dispatch is the typed verb surface a thin external shell calls:
// one function per verb, taking a parameter struct and returning a response
// struct or error. Grounded on the teacher's cmd/*.go one-command-per-verb
// structure with the cobra/output/session layer stripped out.
package dispatch

import (
	"github.com/hallowell/workitem/internal/eventsink"
	"github.com/hallowell/workitem/internal/mutation"
	"github.com/hallowell/workitem/internal/scheduler"
	"github.com/hallowell/workitem/internal/store"
	"github.com/hallowell/workitem/internal/tree"
	"github.com/hallowell/workitem/internal/undoredo"
)

// Dispatcher wires every verb to the underlying engines sharing one Store.
type Dispatcher struct {
	store     *store.Store
	mutation  *mutation.Engine
	undoRedo  *undoredo.Engine
	scheduler *scheduler.Scheduler
	tree      *tree.Reader
}

// New returns a Dispatcher backed by s, publishing no events.
func New(s *store.Store) *Dispatcher {
	return NewWithSink(s, eventsink.NoopSink{})
}

// NewWithSink returns a Dispatcher backed by s whose mutation and undo/redo
// engines publish post-commit events to sink.
func NewWithSink(s *store.Store, sink eventsink.Sink) *Dispatcher {
	m := mutation.New(s)
	u := undoredo.New(s)
	m.SetSink(sink)
	u.SetSink(sink)
	return &Dispatcher{
		store:     s,
		mutation:  m,
		undoRedo:  u,
		scheduler: scheduler.New(s),
		tree:      tree.New(s),
	}
}
