package view

import (
	"fmt"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

// Input message types accepted on the WebSocket stream.
const (
	MsgShift = "shift"
	MsgPick  = "pick"
	MsgClose = "close"
)

// InputMessage is one operator action, either over the WebSocket or as a
// POST body.
type InputMessage struct {
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	Channel string  `json:"channel,omitempty"`
}

// Event converts the message into a session event.
func (m InputMessage) Event() (align.Event, error) {
	switch m.Type {
	case MsgShift:
		return align.Event{Kind: align.ShiftEvent, Value: m.Value}, nil
	case MsgPick:
		if m.Channel == "" {
			return align.Event{}, fmt.Errorf("pick needs a channel")
		}
		return align.Event{Kind: align.PickEvent, Value: m.Value, Channel: m.Channel}, nil
	case MsgClose:
		return align.Event{Kind: align.CloseEvent}, nil
	}
	return align.Event{}, fmt.Errorf("unknown message type %q", m.Type)
}

// StateResponse mirrors models.AlignmentState on the wire. Pick is omitted
// until a pick has been captured.
type StateResponse struct {
	Shift  float64  `json:"shift"`
	Pick   *float64 `json:"pick,omitempty"`
	Closed bool     `json:"closed,omitempty"`
}

func toStateResponse(st models.AlignmentState) StateResponse {
	resp := StateResponse{Shift: st.Shift}
	if st.HasPick {
		p := st.Pick
		resp.Pick = &p
	}
	return resp
}

type SeriesDTO struct {
	Times   []float64 `json:"times"`
	Samples []float64 `json:"samples"`
}

type WindowDTO struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ChannelDTO carries everything the page needs to draw one channel. Target
// times are unshifted; the page adds the current shift itself.
type ChannelDTO struct {
	Channel   string    `json:"channel"`
	Window    WindowDTO `json:"window"`
	Reference SeriesDTO `json:"reference"`
	Target    SeriesDTO `json:"target"`
}

type LayoutResponse struct {
	Station  string       `json:"station"`
	Event1   string       `json:"event1"`
	Event2   string       `json:"event2"`
	MinShift float64      `json:"min_shift"`
	MaxShift float64      `json:"max_shift"`
	YLimit   float64      `json:"y_limit"`
	Channels []ChannelDTO `json:"channels"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
