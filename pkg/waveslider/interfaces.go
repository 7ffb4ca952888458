package waveslider

import (
	"context"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Source loads the raw traces of one station and event, in channel order.
type Source interface {
	LoadEvent(station, event string, channels []string) ([]*models.Trace, error)
}

// Sink receives every record emitted at the end of a session.
type Sink interface {
	Emit(ctx context.Context, r models.OutputRecord) error
}

// Backend drives an alignment session until the operator closes the view.
type Backend interface {
	Run(ctx context.Context, session *align.Session) (models.AlignmentState, error)
}
