package sac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

func padField(s string, n int) []byte {
	b := bytes.Repeat([]byte{' '}, n)
	copy(b, s)
	return b
}

// Encode renders f as a version 6 SAC binary image. The reference time is
// written with millisecond resolution.
func Encode(f *File) ([]byte, error) {
	if f.Delta <= 0 {
		return nil, fmt.Errorf("invalid SAC DELTA %v", f.Delta)
	}
	order := f.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}

	var hdr rawHeader
	for i := range hdr.Floats {
		hdr.Floats[i] = Undefined
	}
	for i := range hdr.Ints {
		hdr.Ints[i] = Undefined
	}
	for i := 0; i < len(hdr.Strings); i += kStrLen {
		copy(hdr.Strings[i:], padField("-12345", kStrLen))
	}

	npts := len(f.Samples)
	hdr.Floats[fDelta] = float32(f.Delta)
	hdr.Floats[fB] = float32(f.B)
	hdr.Floats[fE] = float32(f.B + float64(npts-1)*f.Delta)

	ref := f.Reference.UTC().Truncate(time.Millisecond)
	hdr.Ints[iNZYear] = int32(ref.Year())
	hdr.Ints[iNZJDay] = int32(ref.YearDay())
	hdr.Ints[iNZHour] = int32(ref.Hour())
	hdr.Ints[iNZMin] = int32(ref.Minute())
	hdr.Ints[iNZSec] = int32(ref.Second())
	hdr.Ints[iNZMSec] = int32(ref.Nanosecond() / int(time.Millisecond))
	hdr.Ints[iNVHdr] = 6
	hdr.Ints[iNPts] = int32(npts)
	hdr.Ints[iIFType] = iftypeTS
	hdr.Ints[iLEven] = 1

	copy(hdr.Strings[kStnm:], padField(f.Station, kStrLen))
	copy(hdr.Strings[kCmpnm:], padField(f.Channel, kStrLen))
	copy(hdr.Strings[kNetwk:], padField(f.Network, kStrLen))

	var buf bytes.Buffer
	buf.Grow(headerSize + 4*npts)
	if err := binary.Write(&buf, order, &hdr); err != nil {
		return nil, fmt.Errorf("writing SAC header: %w", err)
	}
	raw := make([]float32, npts)
	for i, v := range f.Samples {
		raw[i] = float32(v)
	}
	if err := binary.Write(&buf, order, raw); err != nil {
		return nil, fmt.Errorf("writing SAC samples: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes f and writes it to path.
func WriteFile(path string, f *File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
