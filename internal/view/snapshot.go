package view

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/himanishpuri/WaveSlider/internal/align"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

var (
	referenceColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	targetColor    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	pickColor      = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

const (
	snapshotWidth      = 12 * vg.Inch
	snapshotRowHeight  = 3 * vg.Inch
	snapshotLineWidthP = 1
)

func seriesXYs(s align.Series) plotter.XYs {
	pts := make(plotter.XYs, len(s.Times))
	for i := range s.Times {
		pts[i] = plotter.XY{X: s.Times[i], Y: s.Samples[i]}
	}
	return pts
}

// channelPlot draws one channel: reference on its own axis, target translated
// by the state's shift and the pick marker if one is held.
func (s *Server) channelPlot(ch string, st models.AlignmentState) (*plot.Plot, error) {
	win, ok := s.session.Window(ch)
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", ch)
	}
	ref, _ := s.session.ReferenceSeries(ch)
	tgt, _ := s.session.TargetSeries(ch, st.Shift)

	p := plot.New()
	p.Title.Text = ch
	p.X.Label.Text = "Time (s)"

	refLine, err := plotter.NewLine(seriesXYs(ref))
	if err != nil {
		return nil, fmt.Errorf("reference line: %w", err)
	}
	refLine.Color = referenceColor
	refLine.Width = vg.Points(snapshotLineWidthP)

	tgtLine, err := plotter.NewLine(seriesXYs(tgt))
	if err != nil {
		return nil, fmt.Errorf("target line: %w", err)
	}
	tgtLine.Color = targetColor
	tgtLine.Width = vg.Points(snapshotLineWidthP)

	p.Add(refLine, tgtLine)
	p.Legend.Add(s.config.Event1, refLine)
	p.Legend.Add(s.config.Event2, tgtLine)
	p.Legend.Top = true

	if st.HasPick && win.Contains(st.Pick) {
		marker, err := plotter.NewLine(plotter.XYs{{X: st.Pick, Y: -YLimit}, {X: st.Pick, Y: YLimit}})
		if err != nil {
			return nil, fmt.Errorf("pick marker: %w", err)
		}
		marker.Color = pickColor
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(marker)
	}

	// plotter lines widen the axes to their data; restore the display range
	p.X.Min, p.X.Max = win.Start, win.End
	p.Y.Min, p.Y.Max = -YLimit, YLimit
	return p, nil
}

// Snapshot renders every channel, stacked in display order, as a PNG.
func (s *Server) Snapshot(st models.AlignmentState) ([]byte, error) {
	channels := s.session.Channels()
	rows := make([][]*plot.Plot, len(channels))
	for i, ch := range channels {
		p, err := s.channelPlot(ch, st)
		if err != nil {
			return nil, err
		}
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(snapshotWidth, snapshotRowHeight*vg.Length(len(rows)))
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(rows), Cols: 1, PadY: vg.Points(6)}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
