package view

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/pkg/logger"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

const (
	DefaultAddr     = "127.0.0.1:8765"
	eventBuffer     = 64
	shutdownTimeout = 5 * time.Second
	replyTimeout    = 5 * time.Second
)

// ErrClosed is returned to inputs that arrive after the view was closed.
var ErrClosed = errors.New("view is closed")

// Logger is the logging surface the server needs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	Station        string
	Event1         string
	Event2         string
}

// Server is the browser backend of an alignment session. Every input it
// receives is forwarded, in arrival order, to a single goroutine running the
// session; handlers never touch session state directly.
type Server struct {
	session  *align.Session
	config   Config
	log      Logger
	upgrader websocket.Upgrader

	events  chan align.Event
	done    chan struct{}
	once    sync.Once
	clients atomic.Int32

	mu    sync.Mutex
	final models.AlignmentState
}

func NewServer(session *align.Session, cfg Config, log Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Server{
		session: session,
		config:  cfg,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		events: make(chan align.Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Done is closed once the session has terminated.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// send queues ev for the session loop, failing once the view is closed.
func (s *Server) send(ctx context.Context, ev align.Event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch sends ev and waits for the state it produced. After close it
// reports the terminal state.
func (s *Server) dispatch(ctx context.Context, ev align.Event) (models.AlignmentState, error) {
	reply := make(chan models.AlignmentState, 1)
	ev.Reply = reply
	if err := s.send(ctx, ev); err != nil {
		if errors.Is(err, ErrClosed) {
			return s.terminal(), err
		}
		return models.AlignmentState{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	select {
	case st := <-reply:
		return st, nil
	case <-s.done:
		return s.terminal(), ErrClosed
	case <-ctx.Done():
		return models.AlignmentState{}, ctx.Err()
	}
}

// State asks the session loop for its current state.
func (s *Server) State(ctx context.Context) (models.AlignmentState, error) {
	return s.dispatch(ctx, align.Event{Kind: align.QueryEvent})
}

func (s *Server) terminal() models.AlignmentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}

// Wait runs the session loop until the operator closes the view or ctx is
// cancelled, and returns the terminal state.
func (s *Server) Wait(ctx context.Context) (models.AlignmentState, error) {
	st, err := s.session.Run(ctx, s.events)

	s.mu.Lock()
	s.final = st
	s.mu.Unlock()
	s.once.Do(func() { close(s.done) })
	return st, err
}

// clientLeft closes the view once its last WebSocket client has gone, the same
// as the operator pressing Close.
func (s *Server) clientLeft() {
	if s.clients.Add(-1) > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	if err := s.send(ctx, align.Event{Kind: align.CloseEvent}); err == nil {
		s.log.Infof("Last view client disconnected; closing the view")
	}
}

// ListenAndRun serves the view on the configured address and blocks until the
// session ends. The HTTP server is shut down before returning.
func (s *Server) ListenAndRun(ctx context.Context) (models.AlignmentState, error) {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return models.AlignmentState{}, fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndRun on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) (models.AlignmentState, error) {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	s.log.Infof("🌐 Alignment view at http://%s/", ln.Addr())

	st, err := s.Wait(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		s.log.Warnf("view shutdown: %v", serr)
	}
	if serr := <-serveErr; serr != nil && err == nil {
		err = fmt.Errorf("view server: %w", serr)
	}
	return st, err
}
