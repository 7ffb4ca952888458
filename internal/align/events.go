package align

import (
	"context"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

type EventKind int

const (
	ShiftEvent EventKind = iota // continuous shift control moved
	PickEvent                   // pointer click inside a channel view
	QueryEvent                  // read-only state request
	CloseEvent                  // operator closed the view
)

func (k EventKind) String() string {
	switch k {
	case ShiftEvent:
		return "shift"
	case PickEvent:
		return "pick"
	case QueryEvent:
		return "query"
	case CloseEvent:
		return "close"
	default:
		return "unknown"
	}
}

// Event is one input from a rendering backend. Reply, when set, receives the
// state after the event has been applied; it must be buffered.
type Event struct {
	Kind    EventKind
	Value   float64 // shift for ShiftEvent, time for PickEvent
	Channel string  // PickEvent only
	Reply   chan<- models.AlignmentState
}

// Apply dispatches a single event to the session. It reports whether the event
// closes the view.
func (s *Session) Apply(ev Event) bool {
	switch ev.Kind {
	case ShiftEvent:
		s.SetShift(ev.Value)
	case PickEvent:
		s.CapturePick(ev.Channel, ev.Value)
	}
	if ev.Reply != nil {
		select {
		case ev.Reply <- s.state:
		default:
		}
	}
	return ev.Kind == CloseEvent
}

// Run applies events strictly in arrival order until a CloseEvent arrives or
// the channel is closed, then returns the terminal state. This is the only
// blocking call of a session. Cancelling ctx abandons the session and returns
// ctx.Err() alongside the state reached so far.
func (s *Session) Run(ctx context.Context, events <-chan Event) (models.AlignmentState, error) {
	for {
		select {
		case <-ctx.Done():
			return s.state, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return s.state, nil
			}
			if s.Apply(ev) {
				return s.state, nil
			}
		}
	}
}
