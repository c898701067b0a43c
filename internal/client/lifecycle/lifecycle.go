// Package lifecycle models the foreground/background state of the app.
package lifecycle

import (
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/events"
)

type State int

const (
	Active State = iota
	Background
	Inactive
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Background:
		return "background"
	case Inactive:
		return "inactive"
	}
	return "unknown"
}

// Transition is a change of app state.
type Transition struct {
	Prev State
	Next State
}

// IsForegroundTransition reports whether the app came back to the
// foreground.
func IsForegroundTransition(prev, next State) bool {
	return next == Active && (prev == Background || prev == Inactive)
}

// Emitter tracks the current state and publishes transitions. The app
// starts Active.
type Emitter struct {
	mu      sync.Mutex
	current State
	stream  *events.Stream[Transition]
}

func NewEmitter() *Emitter {
	return &Emitter{current: Active, stream: events.NewStream[Transition]()}
}

// Set moves the app to next. Setting the current state again is a no-op.
func (e *Emitter) Set(next State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if next == e.current {
		return
	}
	t := Transition{Prev: e.current, Next: next}
	e.current = next
	e.stream.Publish(t)
}

func (e *Emitter) Current() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Emitter) Subscribe(fn func(Transition)) events.Subscription {
	return e.stream.Subscribe(fn)
}

// Flush waits until all published transitions have been delivered.
func (e *Emitter) Flush() { e.stream.Flush() }

func (e *Emitter) Close() { e.stream.Close() }
