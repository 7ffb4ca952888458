package sac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

// Undefined is the SAC sentinel for unset numeric header fields.
const Undefined = -12345

const headerSize = 632

// float header word indices
const (
	fDelta = 0
	fB     = 5
	fE     = 6
)

// int header word indices, relative to word 70
const (
	iNZYear  = 0
	iNZJDay  = 1
	iNZHour  = 2
	iNZMin   = 3
	iNZSec   = 4
	iNZMSec  = 5
	iNVHdr   = 6
	iNPts    = 9
	iIFType  = 15
	iLEven   = 35
	iftypeTS = 1
)

// byte offsets of the string fields inside the character block
const (
	kStnm   = 0
	kCmpnm  = 160
	kNetwk  = 168
	kStrLen = 8
)

var (
	ErrNotSAC             = errors.New("not a SAC binary file")
	ErrUnsupportedVersion = errors.New("unsupported SAC header version")
	ErrUnevenSampling     = errors.New("unevenly sampled SAC data not supported")
)

// rawHeader mirrors the fixed 632-byte SAC header layout.
type rawHeader struct {
	Floats  [70]float32
	Ints    [40]int32
	Strings [192]byte
}

// File holds the header fields needed for waveform analysis plus the samples.
type File struct {
	Delta     float64
	B         float64 // begin offset from reference time, seconds
	Reference time.Time
	Station   string
	Network   string
	Channel   string
	Samples   []float64
	ByteOrder binary.ByteOrder
}

// StartTime returns the absolute time of the first sample.
func (f *File) StartTime() time.Time {
	return f.Reference.Add(secondsToDuration(f.B))
}

// SampleRate returns samples per second.
func (f *File) SampleRate() float64 {
	return 1.0 / f.Delta
}

// detectByteOrder reads NVHDR in both byte orders and keeps the one that yields
// a known header version.
func detectByteOrder(hdr []byte) (binary.ByteOrder, error) {
	word := hdr[(70+iNVHdr)*4 : (70+iNVHdr)*4+4]
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		v := int32(order.Uint32(word))
		switch v {
		case 6, 7:
			return order, nil
		}
		if v > 0 && v < 6 {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		}
	}
	return nil, ErrNotSAC
}

func trimField(b []byte) string {
	s := strings.TrimRight(string(b), " \x00")
	if s == "-12345" {
		return ""
	}
	return s
}

// referenceTime builds the header reference instant. Undefined date fields
// fall back to the Unix epoch.
func referenceTime(ints [40]int32) time.Time {
	for _, idx := range []int{iNZYear, iNZJDay, iNZHour, iNZMin, iNZSec, iNZMSec} {
		if ints[idx] == Undefined {
			return time.Unix(0, 0).UTC()
		}
	}
	t := time.Date(int(ints[iNZYear]), time.January, 1,
		int(ints[iNZHour]), int(ints[iNZMin]), int(ints[iNZSec]),
		int(ints[iNZMSec])*int(time.Millisecond), time.UTC)
	return t.AddDate(0, 0, int(ints[iNZJDay])-1)
}

// Decode parses a complete SAC binary file image.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrNotSAC, len(data))
	}

	order, err := detectByteOrder(data[:headerSize])
	if err != nil {
		return nil, err
	}

	var hdr rawHeader
	if err := binary.Read(bytes.NewReader(data[:headerSize]), order, &hdr); err != nil {
		return nil, fmt.Errorf("reading SAC header: %w", err)
	}

	npts := int(hdr.Ints[iNPts])
	if npts < 0 {
		return nil, fmt.Errorf("%w: negative NPTS %d", ErrNotSAC, npts)
	}
	if hdr.Ints[iLEven] == 0 {
		return nil, ErrUnevenSampling
	}
	if ift := hdr.Ints[iIFType]; ift != Undefined && ift != iftypeTS {
		return nil, fmt.Errorf("unsupported SAC IFTYPE %d: only time series supported", ift)
	}
	delta := float64(hdr.Floats[fDelta])
	if delta <= 0 || math.IsNaN(delta) {
		return nil, fmt.Errorf("invalid SAC DELTA %v", delta)
	}

	body := data[headerSize:]
	if len(body) < npts*4 {
		return nil, fmt.Errorf("reading SAC data: %w (want %d samples, have %d bytes)", io.ErrUnexpectedEOF, npts, len(body))
	}
	raw := make([]float32, npts)
	if err := binary.Read(bytes.NewReader(body[:npts*4]), order, raw); err != nil {
		return nil, fmt.Errorf("decoding SAC samples: %w", err)
	}
	samples := make([]float64, npts)
	for i, v := range raw {
		samples[i] = float64(v)
	}

	b := float64(hdr.Floats[fB])
	if hdr.Floats[fB] == Undefined {
		b = 0
	}

	return &File{
		Delta:     delta,
		B:         b,
		Reference: referenceTime(hdr.Ints),
		Station:   trimField(hdr.Strings[kStnm : kStnm+kStrLen]),
		Network:   trimField(hdr.Strings[kNetwk : kNetwk+kStrLen]),
		Channel:   trimField(hdr.Strings[kCmpnm : kCmpnm+kStrLen]),
		Samples:   samples,
		ByteOrder: order,
	}, nil
}

// ReadFile reads and decodes a SAC binary file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
