package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/himanishpuri/WaveSlider/internal/dsp"
	"github.com/himanishpuri/WaveSlider/internal/record"
	"github.com/himanishpuri/WaveSlider/internal/view"
	"github.com/himanishpuri/WaveSlider/pkg/waveslider"
)

const EnvPrefix = "WAVESLIDER"

var ErrInvalid = errors.New("invalid configuration")

// Config is the fully resolved command-line configuration of one alignment
// run. Precedence, highest first: flags, WAVESLIDER_* environment, config
// file, defaults.
type Config struct {
	F1      float64
	F2      float64
	CCValue float64
	Event1  string
	Event2  string
	Station string
	OutFile string
	Chan1   string
	Chan2   string
	Chan3   string
	Phase   string
	TopDir  string

	Corners  int
	Rate     float64
	Addr     string
	Catalog  string
	Export   string
	Snapshot string
	LogLevel string
}

// NewFlagSet declares every option. f1 and f2 are strings so that an unset
// corner can be told apart from a zero one.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("f1", "", "Bandpass low corner in Hz (required)")
	fs.String("f2", "", "Bandpass high corner in Hz (required)")
	fs.Float64("ccval", 1.0, "Correlation coefficient written to the output line")
	fs.String("ev1", "", "Reference event (required)")
	fs.String("ev2", "", "Event to shift (required)")
	fs.String("station", "", "Station code (required)")
	fs.String("outfile", record.DefaultResultsFile, "Results file, appended to")
	fs.String("chan1", "", "Reference channel (required)")
	fs.String("chan2", "", "Second channel (required)")
	fs.String("chan3", "", "Third channel (required)")
	fs.String("phase", "P", "Phase label")
	fs.String("topdir", ".", "Directory holding STATION.EVENT subdirectories")

	fs.Int("corners", dsp.DefaultCorners, "Butterworth order per filter pass (even)")
	fs.Float64("rate", dsp.DefaultTargetRate, "Resampling rate in Hz")
	fs.String("addr", view.DefaultAddr, "Alignment view listen address")
	fs.String("catalog", "", "Optional SQLite catalog of emitted records")
	fs.String("export", "", "Optional directory for WAV and spectrogram exports")
	fs.String("snapshot", "", "Optional PNG of the final alignment")
	fs.String("config", "", "Optional YAML config file")
	fs.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	return fs
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("waveslider")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load parses args and resolves the configuration. Every missing or malformed
// setting is reported in one error.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v, err := newViper(fs)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CCValue:  v.GetFloat64("ccval"),
		Event1:   v.GetString("ev1"),
		Event2:   v.GetString("ev2"),
		Station:  v.GetString("station"),
		OutFile:  v.GetString("outfile"),
		Chan1:    v.GetString("chan1"),
		Chan2:    v.GetString("chan2"),
		Chan3:    v.GetString("chan3"),
		Phase:    v.GetString("phase"),
		TopDir:   v.GetString("topdir"),
		Corners:  v.GetInt("corners"),
		Rate:     v.GetFloat64("rate"),
		Addr:     v.GetString("addr"),
		Catalog:  v.GetString("catalog"),
		Export:   v.GetString("export"),
		Snapshot: v.GetString("snapshot"),
		LogLevel: v.GetString("log-level"),
	}

	var problems []string
	cfg.F1 = parseCorner(v.GetString("f1"), "f1", &problems)
	cfg.F2 = parseCorner(v.GetString("f2"), "f2", &problems)

	required := []struct{ key, val string }{
		{"ev1", cfg.Event1},
		{"ev2", cfg.Event2},
		{"station", cfg.Station},
		{"chan1", cfg.Chan1},
		{"chan2", cfg.Chan2},
		{"chan3", cfg.Chan3},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			problems = append(problems, "missing --"+r.key)
		}
	}

	if len(problems) == 0 && cfg.F1 >= cfg.F2 {
		problems = append(problems, fmt.Sprintf("f1 (%g) must be below f2 (%g)", cfg.F1, cfg.F2))
	}
	if cfg.Corners < 2 || cfg.Corners%2 != 0 {
		problems = append(problems, fmt.Sprintf("corners %d must be a positive even number", cfg.Corners))
	}
	if !(cfg.Rate > 0) {
		problems = append(problems, fmt.Sprintf("rate %g must be positive", cfg.Rate))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return cfg, nil
}

func parseCorner(raw, key string, problems *[]string) float64 {
	if strings.TrimSpace(raw) == "" {
		*problems = append(*problems, "missing --"+key)
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !(f > 0) {
		*problems = append(*problems, fmt.Sprintf("--%s must be a positive number, got %q", key, raw))
		return 0
	}
	return f
}

// Options converts the configuration into Aligner options.
func (c *Config) Options() []waveslider.Option {
	opts := []waveslider.Option{
		waveslider.WithTopDir(c.TopDir),
		waveslider.WithStation(c.Station),
		waveslider.WithEvents(c.Event1, c.Event2),
		waveslider.WithChannels(c.Chan1, c.Chan2, c.Chan3),
		waveslider.WithPhase(c.Phase),
		waveslider.WithCCValue(c.CCValue),
		waveslider.WithBand(c.F1, c.F2),
		waveslider.WithCorners(c.Corners),
		waveslider.WithTargetRate(c.Rate),
		waveslider.WithResultsFile(c.OutFile),
		waveslider.WithAddr(c.Addr),
	}
	if c.Catalog != "" {
		opts = append(opts, waveslider.WithCatalog(c.Catalog))
	}
	if c.Export != "" {
		opts = append(opts, waveslider.WithExportDir(c.Export))
	}
	if c.Snapshot != "" {
		opts = append(opts, waveslider.WithSnapshot(c.Snapshot))
	}
	return opts
}
