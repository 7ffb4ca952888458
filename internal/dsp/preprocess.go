package dsp

import (
	"fmt"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

// DefaultCorners is the Butterworth order applied in each filter pass.
const DefaultCorners = 4

type Config struct {
	LowHz      float64
	HighHz     float64
	Corners    int
	TargetRate float64
}

// Preprocessor turns raw traces into analysis-ready traces: zero-phase
// bandpass, middle-window normalization, resampling to TargetRate. It holds no
// state between traces.
type Preprocessor struct {
	cfg Config
}

func NewPreprocessor(cfg Config) (*Preprocessor, error) {
	if cfg.Corners == 0 {
		cfg.Corners = DefaultCorners
	}
	if cfg.TargetRate == 0 {
		cfg.TargetRate = DefaultTargetRate
	}
	if !(cfg.LowHz > 0) || !(cfg.HighHz > cfg.LowHz) {
		return nil, fmt.Errorf("%w: need 0 < f1 (%g) < f2 (%g)", ErrInvalidCorners, cfg.LowHz, cfg.HighHz)
	}
	if cfg.Corners < 2 || cfg.Corners%2 != 0 {
		return nil, fmt.Errorf("%w: corners %d must be a positive even number", ErrInvalidCorners, cfg.Corners)
	}
	if cfg.TargetRate < 0 {
		return nil, fmt.Errorf("invalid target rate %v Hz", cfg.TargetRate)
	}
	return &Preprocessor{cfg: cfg}, nil
}

func (p *Preprocessor) Config() Config {
	return p.cfg
}

// Process returns a new trace; the input trace is left untouched.
func (p *Preprocessor) Process(tr *models.Trace) (*models.Trace, error) {
	if tr == nil {
		return nil, fmt.Errorf("preprocess: nil trace")
	}
	id := tr.Event + "/" + tr.Channel
	if p.cfg.HighHz >= tr.Nyquist() {
		return nil, fmt.Errorf("preprocess %s: %w: f2 %g Hz not below Nyquist %g Hz",
			id, ErrInvalidCorners, p.cfg.HighHz, tr.Nyquist())
	}

	filtered, err := Bandpass(tr.Samples, p.cfg.LowHz, p.cfg.HighHz, tr.SampleRate, p.cfg.Corners)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", id, err)
	}

	normalized, err := Normalize(filtered)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", id, err)
	}

	resampled, err := Resample(normalized, tr.SampleRate, p.cfg.TargetRate)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", id, err)
	}

	return &models.Trace{
		Station:    tr.Station,
		Event:      tr.Event,
		Channel:    tr.Channel,
		SampleRate: p.cfg.TargetRate,
		StartTime:  tr.StartTime,
		Samples:    resampled,
	}, nil
}
