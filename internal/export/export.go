package export

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/eligwz/spectrogram"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"

	"github.com/himanishpuri/WaveSlider/pkg/models"
	"github.com/himanishpuri/WaveSlider/pkg/utils"
)

const (
	bitDepth         = 16
	defaultWidth     = 2048
	defaultHeight    = 512
	pcmFormatPCM     = 1
	maxInt16Fraction = 32767
)

// Exporter writes preprocessed traces as mono 16-bit WAV files, optionally
// with a spectrogram PNG next to each one.
type Exporter struct {
	Dir         string
	Speedup     float64 // playback rate multiplier written into the WAV header
	Spectrogram bool
	Width       int
	Height      int
}

func New(dir string) *Exporter {
	return &Exporter{Dir: dir, Speedup: 1, Spectrogram: true, Width: defaultWidth, Height: defaultHeight}
}

func baseName(tr *models.Trace) string {
	return fmt.Sprintf("%s.%s.%s", tr.Station, tr.Event, tr.Channel)
}

// toPCM scales x by its overall peak so the full trace fits in int16.
func toPCM(x []float64) []int {
	out := make([]int, len(x))
	peak := floats.Norm(x, math.Inf(1))
	if peak == 0 || math.IsNaN(peak) {
		return out
	}
	for i, v := range x {
		out[i] = int(math.Round(v / peak * maxInt16Fraction))
	}
	return out
}

// WriteWAV writes tr to path. The header rate is the trace rate times Speedup.
func (e *Exporter) WriteWAV(path string, tr *models.Trace) error {
	speed := e.Speedup
	if speed <= 0 {
		speed = 1
	}
	rate := int(math.Round(tr.SampleRate * speed))
	if rate <= 0 {
		return fmt.Errorf("export %s: invalid sample rate %v", baseName(tr), tr.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, bitDepth, 1, pcmFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           toPCM(tr.Samples),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

// WriteSpectrogram renders an FFT magnitude spectrogram of tr as PNG.
func (e *Exporter) WriteSpectrogram(path string, tr *models.Trace) error {
	width, height := e.Width, e.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	// one column per sample at most
	if n := tr.Len(); n < width {
		width = n
	}
	if width == 0 {
		return fmt.Errorf("spectrogram %s: empty trace", baseName(tr))
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		tr.Samples,
		uint32(tr.SampleRate),
		uint32(height),
		false, // Hamming window
		false, // FFT
		true,  // magnitude
		false, // linear scale
	)

	if err := spectrogram.SavePng(img, path); err != nil {
		return fmt.Errorf("saving spectrogram %s: %w", path, err)
	}
	return nil
}

// Traces exports both traces of every pair and returns the written paths.
func (e *Exporter) Traces(pairs []models.ChannelPair) ([]string, error) {
	if err := utils.MakeDir(e.Dir); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	var written []string
	for _, p := range pairs {
		for _, tr := range []*models.Trace{p.Reference, p.Target} {
			base := filepath.Join(e.Dir, baseName(tr))

			wavPath := base + ".wav"
			if err := e.WriteWAV(wavPath, tr); err != nil {
				return written, err
			}
			written = append(written, wavPath)

			if !e.Spectrogram {
				continue
			}
			pngPath := base + ".png"
			if err := e.WriteSpectrogram(pngPath, tr); err != nil {
				return written, err
			}
			written = append(written, pngPath)
		}
	}
	return written, nil
}
