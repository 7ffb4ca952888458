package waveform

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/himanishpuri/WaveSlider/internal/sac"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

var ErrChannelMismatch = errors.New("channel pair mismatch")

// DirSource reads traces laid out as topdir/STATION.EVENT/CHANNEL.sac.
type DirSource struct {
	TopDir string
}

func NewDirSource(topDir string) *DirSource {
	if topDir == "" {
		topDir = "."
	}
	return &DirSource{TopDir: topDir}
}

// EventDir returns the directory holding one event's recordings at station.
func (s *DirSource) EventDir(station, event string) string {
	return filepath.Join(s.TopDir, station+"."+event)
}

// Load reads dir/channel.sac into a Trace. Station and event identifiers are
// left for the caller to fill in.
func (s *DirSource) Load(dir, channel string) (*models.Trace, error) {
	path := filepath.Join(dir, channel+".sac")
	f, err := sac.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading waveform %s: %w", path, err)
	}
	return &models.Trace{
		Station:    f.Station,
		Channel:    channel,
		SampleRate: f.SampleRate(),
		StartTime:  f.StartTime(),
		Samples:    f.Samples,
	}, nil
}

// LoadEvent reads every channel for one event, in the order given.
func (s *DirSource) LoadEvent(station, event string, channels []string) ([]*models.Trace, error) {
	dir := s.EventDir(station, event)
	traces := make([]*models.Trace, 0, len(channels))
	for _, ch := range channels {
		tr, err := s.Load(dir, ch)
		if err != nil {
			return nil, err
		}
		tr.Station = station
		tr.Event = event
		traces = append(traces, tr)
	}
	return traces, nil
}

// Pair builds a ChannelPair after checking that both traces share the channel
// identifier and sampling rate.
func Pair(ref, tgt *models.Trace) (models.ChannelPair, error) {
	if ref == nil || tgt == nil {
		return models.ChannelPair{}, fmt.Errorf("%w: missing trace", ErrChannelMismatch)
	}
	if ref.Channel != tgt.Channel {
		return models.ChannelPair{}, fmt.Errorf("%w: channels %s and %s", ErrChannelMismatch, ref.Channel, tgt.Channel)
	}
	if ref.SampleRate != tgt.SampleRate {
		return models.ChannelPair{}, fmt.Errorf("%w: %s sampled at %v Hz and %v Hz",
			ErrChannelMismatch, ref.Channel, ref.SampleRate, tgt.SampleRate)
	}
	return models.ChannelPair{Channel: ref.Channel, Reference: ref, Target: tgt}, nil
}
