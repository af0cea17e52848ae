package dock

import (
	"sync"
	"time"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// EventKind tags a DockingEvent.
type EventKind string

const (
	EventSnapped             EventKind = "snapped"
	EventDetached            EventKind = "detached"
	EventProximityEntered    EventKind = "proximityEntered"
	EventProximityUpdated    EventKind = "proximityUpdated"
	EventProximityExited     EventKind = "proximityExited"
	EventFollowerDragStarted EventKind = "followerDragStarted"
	EventFollowerDragging    EventKind = "followerDragging"
	EventFollowerDragEnded   EventKind = "followerDragEnded"
)

// DetachReason explains why a binding went away.
type DetachReason string

const (
	ReasonRequested         DetachReason = "requested"
	ReasonDraggedAway       DetachReason = "draggedAway"
	ReasonTargetHidden      DetachReason = "targetHidden"
	ReasonTargetDestroyed   DetachReason = "targetDestroyed"
	ReasonFollowerDestroyed DetachReason = "followerDestroyed"
)

// Event is emitted by the Controller. PanelID is the follower for
// snapped/detached/follower* events and the dragged panel for proximity
// events. Unused fields are zero.
type Event struct {
	Kind        EventKind        `json:"kind"`
	PanelID     platform.PanelID `json:"panel_id"`
	TargetID    platform.PanelID `json:"target_id,omitempty"`
	Reason      DetachReason     `json:"reason,omitempty"`
	DraggedEdge geometry.Edge    `json:"dragged_edge,omitempty"`
	TargetEdge  geometry.Edge    `json:"target_edge,omitempty"`
	Distance    float64          `json:"distance,omitempty"`
	Frame       *geometry.Rect   `json:"frame,omitempty"`
	Time        time.Time        `json:"time"`
}

// Sink consumes controller events. Emit is called without controller locks
// held, in the order the events were produced.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Tee fans events out to several sinks. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}

// Recorder keeps the most recent events in a fixed-size ring.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// DefaultRecorderSize is the ring size used by the daemon.
const DefaultRecorderSize = 256

// NewRecorder creates a recorder holding up to size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{events: make([]Event, size)}
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Events returns recorded events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)
	return out
}

// Kinds returns the kinds of recorded events, oldest first.
func (r *Recorder) Kinds() []EventKind {
	evs := r.Events()
	out := make([]EventKind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		r.events[i] = Event{}
	}
	r.next = 0
	r.full = false
}
