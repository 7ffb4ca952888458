package view

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/himanishpuri/WaveSlider/internal/align"
)

// YLimit is the fixed vertical display range of every channel.
const YLimit = 1.1

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(pageHTML); err != nil {
		s.log.Warnf("writing page: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "open"
	select {
	case <-s.done:
		status = "closed"
	default:
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"station": s.config.Station,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// handleLayout handles GET /api/layout. Series and windows never change during
// a session, so they are read without going through the event loop.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	resp := LayoutResponse{
		Station:  s.config.Station,
		Event1:   s.config.Event1,
		Event2:   s.config.Event2,
		MinShift: align.MinShift,
		MaxShift: align.MaxShift,
		YLimit:   YLimit,
	}
	for _, ch := range s.session.Channels() {
		win, _ := s.session.Window(ch)
		ref, _ := s.session.ReferenceSeries(ch)
		tgt, _ := s.session.TargetSeries(ch, 0)
		resp.Channels = append(resp.Channels, ChannelDTO{
			Channel:   ch,
			Window:    WindowDTO{Start: win.Start, End: win.End},
			Reference: SeriesDTO{Times: ref.Times, Samples: ref.Samples},
			Target:    SeriesDTO{Times: tgt.Times, Samples: tgt.Samples},
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.State(r.Context())
	if err != nil && !errors.Is(err, ErrClosed) {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp := toStateResponse(st)
	resp.Closed = errors.Is(err, ErrClosed)
	s.respondJSON(w, http.StatusOK, resp)
}

// applyMessage pushes one input through the session loop and writes the
// resulting state.
func (s *Server) applyMessage(w http.ResponseWriter, r *http.Request, msg InputMessage) {
	ev, err := msg.Event()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.dispatch(r.Context(), ev)
	if errors.Is(err, ErrClosed) {
		s.respondError(w, http.StatusGone, err.Error())
		return
	}
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp := toStateResponse(st)
	resp.Closed = ev.Kind == align.CloseEvent
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request, kind string) (InputMessage, bool) {
	var msg InputMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return msg, false
	}
	msg.Type = kind
	return msg, true
}

func (s *Server) handleShift(w http.ResponseWriter, r *http.Request) {
	if msg, ok := s.decodeInput(w, r, MsgShift); ok {
		s.applyMessage(w, r, msg)
	}
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	if msg, ok := s.decodeInput(w, r, MsgPick); ok {
		s.applyMessage(w, r, msg)
	}
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.applyMessage(w, r, InputMessage{Type: MsgClose})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	st, err := s.State(r.Context())
	if err != nil && !errors.Is(err, ErrClosed) {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	png, err := s.Snapshot(st)
	if err != nil {
		s.log.Errorf("Failed to render snapshot: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to render snapshot")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		s.log.Warnf("writing snapshot: %v", err)
	}
}

// handleWebSocket reads operator inputs from one connection in order and
// answers each with the state it produced. When the last connection drops the
// view is closed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.clients.Add(1)
	defer s.clientLeft()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg InputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debugf("WebSocket read: %v", err)
			}
			return
		}

		ev, err := msg.Event()
		if err != nil {
			s.log.Warnf("Ignoring input: %v", err)
			continue
		}

		st, err := s.dispatch(r.Context(), ev)
		closed := ev.Kind == align.CloseEvent || errors.Is(err, ErrClosed)
		if err != nil && !closed {
			s.log.Warnf("Dispatching %s: %v", ev.Kind, err)
			return
		}

		resp := toStateResponse(st)
		resp.Closed = closed
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
		if closed {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "view closed"))
			return
		}
	}
}
