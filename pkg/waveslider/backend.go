package waveslider

import (
	"context"
	"fmt"
	"os"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/internal/view"
	"github.com/himanishpuri/WaveSlider/pkg/models"
	"github.com/himanishpuri/WaveSlider/pkg/utils"
)

// ViewBackend serves the browser view and blocks until the operator closes it.
// When SnapshotPath is set, the terminal alignment is also saved as PNG.
type ViewBackend struct {
	Config       view.Config
	SnapshotPath string
	Log          Logger
}

func (b *ViewBackend) Run(ctx context.Context, session *align.Session) (models.AlignmentState, error) {
	var log view.Logger
	if b.Log != nil {
		log = b.Log
	}
	srv := view.NewServer(session, b.Config, log)

	st, err := srv.ListenAndRun(ctx)
	if err != nil {
		return st, err
	}

	if b.SnapshotPath != "" {
		png, err := srv.Snapshot(st)
		if err != nil {
			return st, fmt.Errorf("rendering snapshot: %w", err)
		}
		if err := utils.EnsureParentDir(b.SnapshotPath); err != nil {
			return st, err
		}
		if err := os.WriteFile(b.SnapshotPath, png, 0644); err != nil {
			return st, fmt.Errorf("writing snapshot: %w", err)
		}
	}
	return st, nil
}

// ReplayBackend feeds a fixed input sequence to the session and then closes
// the view. It is the headless counterpart of ViewBackend.
type ReplayBackend struct {
	Events []align.Event
}

func (b ReplayBackend) Run(ctx context.Context, session *align.Session) (models.AlignmentState, error) {
	events := make(chan align.Event, len(b.Events)+1)
	for _, ev := range b.Events {
		events <- ev
	}
	events <- align.Event{Kind: align.CloseEvent}
	close(events)
	return session.Run(ctx, events)
}
