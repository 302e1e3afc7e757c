// dock/eventstream.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dock

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/mmp/jetbridge/log"
)

// EventStream provides a basic pub/sub event interface that lets the
// docking state machines announce what they are doing (jetway started
// moving, reached the door, alert light on, ...) without knowing who is
// listening: a sound layer, a UI, a test.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]interface{}
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is the offset in the EventStream events array up to which
	// the subscriber has consumed events so far.
	offset int
	source string
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source))
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]interface{}),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream. Events posted
// before the subscription are never reported to it.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", fn, line)

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: source,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (e *EventsSubscription) Unsubscribe() {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream = nil
}

// Post adds an event to the event stream.
func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) > 0 {
		e.events = append(e.events, event)
	}
}

// Get returns all of the events from the stream since the last time Get
// was called for the subscription.
func (e *EventsSubscription) Get() []Event {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := slices.Clone(e.stream.events[e.offset:])
	e.offset = len(e.stream.events)

	e.stream.compact()
	return events
}

// compact reclaims storage for events that all subscribers have seen so
// that EventStream memory usage doesn't grow without bound. Must be
// called with the mutex held.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		if sub.offset < minOffset {
			minOffset = sub.offset
		}
	}

	if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}
	}
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	DockingStartedEvent EventType = iota
	DockingCompletedEvent
	DockingAbortedEvent
	UndockingStartedEvent
	UndockingCompletedEvent
	AlertOnEvent
	AlertOffEvent
	StateChangeEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"DockingStarted", "DockingCompleted", "DockingAborted",
		"UndockingStarted", "UndockingCompleted", "AlertOn", "AlertOff",
		"StateChange"}[t]
}

type Event struct {
	Type   EventType
	Jetway string
	Door   int

	// For StateChangeEvent.
	FromState ManagerState
	ToState   ManagerState

	// Position of the moving cabin in the door frame, for spatialized
	// sound.
	CabinX, CabinZ float32

	WrittenText string

	// Posted at time.
	Time time.Time
}

func (e *Event) String() string {
	switch e.Type {
	case StateChangeEvent:
		return fmt.Sprintf("%s: %s -> %s", e.Type, e.FromState, e.ToState)
	default:
		return fmt.Sprintf("%s: jetway %q door %d %s", e.Type, e.Jetway, e.Door, e.WrittenText)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String())}
	if e.Jetway != "" {
		attrs = append(attrs, slog.String("jetway", e.Jetway), slog.Int("door", e.Door))
	}
	if e.Type == StateChangeEvent {
		attrs = append(attrs, slog.String("from", e.FromState.String()),
			slog.String("to", e.ToState.String()))
	}
	if e.WrittenText != "" {
		attrs = append(attrs, slog.String("written_text", e.WrittenText))
	}
	return slog.GroupValue(attrs...)
}
