package waveslider

import (
	"io"

	"github.com/himanishpuri/WaveSlider/internal/dsp"
	"github.com/himanishpuri/WaveSlider/internal/record"
	"github.com/himanishpuri/WaveSlider/internal/view"
)

type Config struct {
	TopDir   string
	Station  string
	Event1   string
	Event2   string
	Channels []string // chan1, chan2, chan3; chan1 is the reference channel
	Phase    string
	CCValue  float64

	LowHz      float64
	HighHz     float64
	Corners    int
	TargetRate float64

	ResultsFile  string
	CatalogPath  string
	ExportDir    string
	SnapshotPath string
	Addr         string

	Logger Logger
	Source Source
	Sinks  []Sink
	Output io.Writer
}

type Option func(*Config)

func WithTopDir(dir string) Option {
	return func(c *Config) {
		c.TopDir = dir
	}
}

func WithStation(station string) Option {
	return func(c *Config) {
		c.Station = station
	}
}

// WithEvents sets the reference event and the event that gets shifted.
func WithEvents(event1, event2 string) Option {
	return func(c *Config) {
		c.Event1 = event1
		c.Event2 = event2
	}
}

func WithChannels(chan1, chan2, chan3 string) Option {
	return func(c *Config) {
		c.Channels = []string{chan1, chan2, chan3}
	}
}

func WithPhase(phase string) Option {
	return func(c *Config) {
		c.Phase = phase
	}
}

func WithCCValue(v float64) Option {
	return func(c *Config) {
		c.CCValue = v
	}
}

// WithBand sets the bandpass corners in Hz.
func WithBand(low, high float64) Option {
	return func(c *Config) {
		c.LowHz = low
		c.HighHz = high
	}
}

func WithCorners(n int) Option {
	return func(c *Config) {
		c.Corners = n
	}
}

func WithTargetRate(hz float64) Option {
	return func(c *Config) {
		c.TargetRate = hz
	}
}

func WithResultsFile(path string) Option {
	return func(c *Config) {
		c.ResultsFile = path
	}
}

// WithCatalog also stores every emitted record in the SQLite catalog at path.
func WithCatalog(path string) Option {
	return func(c *Config) {
		c.CatalogPath = path
	}
}

func WithExportDir(dir string) Option {
	return func(c *Config) {
		c.ExportDir = dir
	}
}

func WithSnapshot(path string) Option {
	return func(c *Config) {
		c.SnapshotPath = path
	}
}

func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithSource(src Source) Option {
	return func(c *Config) {
		c.Source = src
	}
}

// WithSinks replaces the default results-file sink.
func WithSinks(sinks ...Sink) Option {
	return func(c *Config) {
		c.Sinks = sinks
	}
}

// WithOperatorOutput sets where operator-facing messages are printed.
func WithOperatorOutput(w io.Writer) Option {
	return func(c *Config) {
		c.Output = w
	}
}

func defaultConfig() *Config {
	return &Config{
		TopDir:      ".",
		Phase:       "P",
		CCValue:     1.0,
		Corners:     dsp.DefaultCorners,
		TargetRate:  dsp.DefaultTargetRate,
		ResultsFile: record.DefaultResultsFile,
		Addr:        view.DefaultAddr,
	}
}
