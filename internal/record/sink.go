package record

import (
	"context"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

// FileSink appends each record as one line of the plain-text results file.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultResultsFile
	}
	return &FileSink{Path: path}
}

// DefaultResultsFile is used when no output file is configured.
const DefaultResultsFile = "relative_times.txt"

func (s *FileSink) Emit(_ context.Context, r models.OutputRecord) error {
	return Append(s.Path, r)
}

func (s *FileSink) String() string {
	return s.Path
}
