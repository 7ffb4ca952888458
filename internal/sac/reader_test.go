package sac

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleFile(order binary.ByteOrder) *File {
	return &File{
		Delta:     0.0625,
		B:         1.5,
		Reference: time.Date(2016, time.September, 9, 0, 30, 0, 250*int(time.Millisecond), time.UTC),
		Station:   "MDJ",
		Network:   "IC",
		Channel:   "BHZ",
		Samples:   []float64{0, 0.5, -0.25, 1, -1},
		ByteOrder: order,
	}
}

func TestEncodeDecodeLittleEndian(t *testing.T) {
	data, err := Encode(sampleFile(binary.LittleEndian))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != headerSize+5*4 {
		t.Fatalf("Expected %d bytes, got %d", headerSize+20, len(data))
	}

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if f.ByteOrder != binary.LittleEndian {
		t.Errorf("Expected little-endian detection")
	}
	if f.Station != "MDJ" || f.Channel != "BHZ" || f.Network != "IC" {
		t.Errorf("Unexpected identifiers: %q %q %q", f.Station, f.Network, f.Channel)
	}
	if f.SampleRate() != 16 {
		t.Errorf("Expected 16 Hz, got %v", f.SampleRate())
	}
	want := time.Date(2016, time.September, 9, 0, 30, 1, 750*int(time.Millisecond), time.UTC)
	if !f.StartTime().Equal(want) {
		t.Errorf("Expected start %v, got %v", want, f.StartTime())
	}
	if len(f.Samples) != 5 || f.Samples[2] != -0.25 {
		t.Errorf("Unexpected samples: %v", f.Samples)
	}
}

func TestDecodeBigEndian(t *testing.T) {
	data, err := Encode(sampleFile(binary.BigEndian))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.ByteOrder != binary.BigEndian {
		t.Errorf("Expected big-endian detection")
	}
	if f.Samples[3] != 1 {
		t.Errorf("Expected sample 1.0, got %v", f.Samples[3])
	}
}

func TestDecodeInvalidFile(t *testing.T) {
	if _, err := Decode([]byte("INVALID HEADER DATA")); !errors.Is(err, ErrNotSAC) {
		t.Errorf("Expected ErrNotSAC for short input, got %v", err)
	}

	junk := make([]byte, headerSize)
	if _, err := Decode(junk); !errors.Is(err, ErrNotSAC) {
		t.Errorf("Expected ErrNotSAC for zero header, got %v", err)
	}
}

func TestDecodeTruncatedData(t *testing.T) {
	data, err := Encode(sampleFile(binary.LittleEndian))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Decode(data[:len(data)-3]); err == nil {
		t.Error("Decode should fail when samples are truncated")
	}
}

func TestDecodeUndefinedReference(t *testing.T) {
	data, err := Encode(sampleFile(binary.LittleEndian))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// blank out NZYEAR
	binary.LittleEndian.PutUint32(data[(70+iNZYear)*4:], uint32(0xFFFFCFC7)) // -12345

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !f.Reference.Equal(time.Unix(0, 0)) {
		t.Errorf("Expected epoch reference, got %v", f.Reference)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BHZ.sac")
	if err := WriteFile(path, sampleFile(binary.LittleEndian)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(f.Samples) != 5 {
		t.Errorf("Expected 5 samples, got %d", len(f.Samples))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.sac")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
