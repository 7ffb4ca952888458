package waveslider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/internal/dsp"
	"github.com/himanishpuri/WaveSlider/internal/export"
	"github.com/himanishpuri/WaveSlider/internal/record"
	"github.com/himanishpuri/WaveSlider/internal/storage"
	"github.com/himanishpuri/WaveSlider/internal/view"
	"github.com/himanishpuri/WaveSlider/internal/waveform"
	"github.com/himanishpuri/WaveSlider/pkg/logger"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

var (
	ErrMissingConfig = errors.New("incomplete aligner configuration")
	ErrNotLoaded     = errors.New("traces not loaded")
	ErrNotProcessed  = errors.New("traces not preprocessed")
)

// Aligner runs one station/event-pair alignment: load, preprocess, interactive
// session, then emission of the resulting record.
type Aligner struct {
	cfg     *Config
	log     Logger
	out     io.Writer
	pre     *dsp.Preprocessor
	source  Source
	sinks   []Sink
	catalog *storage.Catalog

	event1 []*models.Trace
	event2 []*models.Trace
	pairs  []models.ChannelPair
}

func New(opts ...Option) (*Aligner, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	pre, err := dsp.NewPreprocessor(dsp.Config{
		LowHz:      cfg.LowHz,
		HighHz:     cfg.HighHz,
		Corners:    cfg.Corners,
		TargetRate: cfg.TargetRate,
	})
	if err != nil {
		return nil, err
	}

	a := &Aligner{
		cfg:    cfg,
		log:    cfg.Logger,
		out:    cfg.Output,
		pre:    pre,
		source: cfg.Source,
		sinks:  cfg.Sinks,
	}
	if a.source == nil {
		a.source = waveform.NewDirSource(cfg.TopDir)
	}
	if a.sinks == nil {
		a.sinks = []Sink{record.NewFileSink(cfg.ResultsFile)}
	}
	if cfg.CatalogPath != "" {
		cat, err := storage.NewCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		a.catalog = cat
	}
	return a, nil
}

func validate(cfg *Config) error {
	var missing []string
	if cfg.Station == "" {
		missing = append(missing, "station")
	}
	if cfg.Event1 == "" {
		missing = append(missing, "ev1")
	}
	if cfg.Event2 == "" {
		missing = append(missing, "ev2")
	}
	if len(cfg.Channels) != 3 {
		missing = append(missing, "chan1/chan2/chan3")
	} else {
		for i, ch := range cfg.Channels {
			if ch == "" {
				missing = append(missing, fmt.Sprintf("chan%d", i+1))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrMissingConfig, missing)
	}
	return nil
}

func (a *Aligner) Config() Config {
	return *a.cfg
}

// Load reads both events' traces for all three channels. Any missing or
// unreadable file aborts the run.
func (a *Aligner) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ev1, err := a.source.LoadEvent(a.cfg.Station, a.cfg.Event1, a.cfg.Channels)
	if err != nil {
		return fmt.Errorf("loading event %s: %w", a.cfg.Event1, err)
	}
	ev2, err := a.source.LoadEvent(a.cfg.Station, a.cfg.Event2, a.cfg.Channels)
	if err != nil {
		return fmt.Errorf("loading event %s: %w", a.cfg.Event2, err)
	}
	if len(ev1) != len(a.cfg.Channels) || len(ev2) != len(a.cfg.Channels) {
		return fmt.Errorf("loading %s: expected %d traces per event", a.cfg.Station, len(a.cfg.Channels))
	}

	a.event1, a.event2 = ev1, ev2
	a.pairs = nil
	a.log.Infof("Loaded %d traces for %s (%s, %s)", len(ev1)+len(ev2), a.cfg.Station, a.cfg.Event1, a.cfg.Event2)
	return nil
}

// Preprocess filters, normalizes and resamples every loaded trace and pairs
// them per channel. Pairs come back in display order: chan3, chan2, chan1.
func (a *Aligner) Preprocess() ([]models.ChannelPair, error) {
	if a.event1 == nil {
		return nil, ErrNotLoaded
	}

	pairs := make([]models.ChannelPair, 0, len(a.event1))
	for i := len(a.event1) - 1; i >= 0; i-- {
		ref, err := a.pre.Process(a.event1[i])
		if err != nil {
			return nil, err
		}
		tgt, err := a.pre.Process(a.event2[i])
		if err != nil {
			return nil, err
		}
		pair, err := waveform.Pair(ref, tgt)
		if err != nil {
			return nil, err
		}
		a.log.Debugf("Preprocessed %s: %d and %d samples at %g Hz", pair.Channel, ref.Len(), tgt.Len(), ref.SampleRate)
		pairs = append(pairs, pair)
	}

	if a.cfg.ExportDir != "" {
		written, err := export.New(a.cfg.ExportDir).Traces(pairs)
		if err != nil {
			return nil, fmt.Errorf("exporting traces: %w", err)
		}
		a.log.Infof("Exported %d files to %s", len(written), a.cfg.ExportDir)
	}

	a.pairs = pairs
	return pairs, nil
}

func (a *Aligner) Pairs() []models.ChannelPair {
	return a.pairs
}

func (a *Aligner) echoPick(channel string, t float64, accepted bool) {
	if accepted {
		fmt.Fprintf(a.out, "Clicked time on reference trace: %v seconds\n", t)
		return
	}
	fmt.Fprintf(a.out, "Click at %v seconds on %s is outside the displayed window; ignored\n", t, channel)
}

// Run opens an alignment session over the preprocessed pairs and blocks in
// backend until the view is closed. A nil backend serves the browser view.
func (a *Aligner) Run(ctx context.Context, backend Backend) (models.AlignmentState, error) {
	if a.pairs == nil {
		return models.AlignmentState{}, ErrNotProcessed
	}

	session, err := align.NewSession(a.pairs, align.WithPickObserver(a.echoPick))
	if err != nil {
		return models.AlignmentState{}, err
	}

	if backend == nil {
		backend = a.ViewBackend()
	}
	st, err := backend.Run(ctx, session)
	if err != nil {
		return st, fmt.Errorf("alignment session: %w", err)
	}
	return st, nil
}

// ViewBackend returns the browser backend configured for this aligner.
func (a *Aligner) ViewBackend() *ViewBackend {
	return &ViewBackend{
		Config: view.Config{
			Addr:    a.cfg.Addr,
			Station: a.cfg.Station,
			Event1:  a.cfg.Event1,
			Event2:  a.cfg.Event2,
		},
		SnapshotPath: a.cfg.SnapshotPath,
		Log:          a.log,
	}
}

// Finish reports the terminal state and, when a pick exists, builds the
// record and hands it to every sink. Without a pick nothing is emitted and
// the returned record is nil.
func (a *Aligner) Finish(ctx context.Context, state models.AlignmentState) (*models.OutputRecord, error) {
	fmt.Fprintf(a.out, "Final time difference between the two events: %v seconds\n", state.Shift)

	if a.event1 == nil {
		return nil, ErrNotLoaded
	}

	ref, tgt := a.event1[0], a.event2[0]
	rec, err := record.Build(state, ref.StartTime, tgt.StartTime, record.Meta{
		Event1:  a.cfg.Event1,
		Event2:  a.cfg.Event2,
		Station: a.cfg.Station,
		Phase:   a.cfg.Phase,
		CCValue: a.cfg.CCValue,
	})
	if errors.Is(err, record.ErrNoPick) {
		fmt.Fprintln(a.out, "No time was clicked on the reference trace.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(a.out, " --- Time Information ---")
	fmt.Fprintf(a.out, "Reference trace clicked time (epoch): %v\n", record.EpochSeconds(rec.ReferenceTime))
	fmt.Fprintf(a.out, "Reference trace clicked time (ISO): %s\n", record.FormatTime(rec.ReferenceTime))
	fmt.Fprintf(a.out, "Shifted trace corresponding time (epoch): %v\n", record.EpochSeconds(rec.ShiftedTime))
	fmt.Fprintf(a.out, "Shifted trace corresponding time (ISO): %s\n", record.FormatTime(rec.ShiftedTime))
	fmt.Fprintln(a.out, record.Line(rec))

	for _, sink := range a.sinks {
		if err := sink.Emit(ctx, rec); err != nil {
			return &rec, fmt.Errorf("emitting record: %w", err)
		}
	}
	// catalog failures are reported but do not fail the run
	if a.catalog != nil {
		if _, err := a.catalog.Save(ctx, rec); err != nil {
			a.log.Warnf("Record appended to results but not catalogued in %s: %v", a.catalog.Path(), err)
		}
	}
	a.log.Infof("Recorded %s-%s at %s: %.4f s", rec.Event1, rec.Event2, rec.Station, rec.TimeDifference)
	return &rec, nil
}

// Close releases the catalog, if one was opened.
func (a *Aligner) Close() error {
	if a.catalog == nil {
		return nil
	}
	err := a.catalog.Close()
	a.catalog = nil
	return err
}
