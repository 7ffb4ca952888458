package record

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/himanishpuri/WaveSlider/pkg/models"
	"github.com/himanishpuri/WaveSlider/pkg/utils"
)

// ErrNoPick means the session closed without a pick. It is a normal outcome.
var ErrNoPick = errors.New("no time was picked on the reference trace")

const (
	fieldSep    = "   "
	isoLayout   = "2006-01-02T15:04:05"
	isoLayoutUS = "2006-01-02T15:04:05.000000"
)

// Meta carries the operator-supplied parts of a record.
type Meta struct {
	Event1  string
	Event2  string
	Station string
	Phase   string
	CCValue float64
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Build derives the absolute correspondence from a terminal session state.
// refStart and tgtStart are the start times of the reference channel's event 1
// and event 2 traces.
func Build(state models.AlignmentState, refStart, tgtStart time.Time, meta Meta) (models.OutputRecord, error) {
	if !state.HasPick {
		return models.OutputRecord{}, ErrNoPick
	}

	refEpoch := refStart.UTC().Add(seconds(state.Pick))
	shiftedEpoch := tgtStart.UTC().Add(seconds(state.Pick)).Add(seconds(state.Shift))

	return models.OutputRecord{
		Event1:         meta.Event1,
		Event2:         meta.Event2,
		ReferenceTime:  refEpoch,
		ShiftedTime:    shiftedEpoch,
		Station:        meta.Station,
		Phase:          meta.Phase,
		CCValue:        meta.CCValue,
		TimeDifference: shiftedEpoch.Sub(refEpoch).Seconds(),
	}, nil
}

// FormatTime renders t in UTC as YYYY-MM-DDTHH:MM:SS, adding a six digit
// fraction only when the microsecond part is non-zero.
func FormatTime(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(isoLayout)
	}
	return t.Format(isoLayoutUS)
}

// EpochSeconds returns t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Line renders the results-file line for r, newline terminated. The
// coefficient column carries one pad space ahead of the separator.
func Line(r models.OutputRecord) string {
	var b strings.Builder
	b.WriteString(r.Event1)
	b.WriteString(fieldSep + r.Event2)
	b.WriteString(fieldSep + FormatTime(r.ReferenceTime))
	b.WriteString(fieldSep + FormatTime(r.ShiftedTime))
	b.WriteString(fieldSep + r.Station)
	b.WriteString(fieldSep + r.Phase)
	b.WriteString(fieldSep + fmt.Sprintf("%9.4f", r.CCValue) + " ")
	b.WriteString(fieldSep + fmt.Sprintf("%20.4f", r.TimeDifference))
	b.WriteString("\n")
	return b.String()
}

// Append writes Line(r) to path in one write, creating the file if needed.
func Append(path string, r models.OutputRecord) error {
	if err := utils.AppendToFile(path, []byte(Line(r))); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}
