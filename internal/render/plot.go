// Package render draws analytics and benchmark series as a line chart.
package render

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chemiclast/rasorite/internal/axis"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ColorAnalytics  = drawing.ColorFromHex("81D4FA")
	ColorBenchmark  = drawing.ColorFromHex("9E9E9E")
	ColorNormalized = drawing.ColorFromHex("FF9800")
)

const (
	titleFontSize    = 20
	subtitleFontSize = 12
	headerHeight     = 80
	strokeWidth      = 2
)

// Options sizes the chart.
type Options struct {
	Width    int
	Height   int
	MaxTicks int
}

// DefaultOptions matches a 1200x800 canvas with up to ten ticks per axis.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 800, MaxTicks: 10}
}

// Line is one plotted series.
type Line struct {
	Series series.Series
	Color  drawing.Color
}

// Plot is a titled set of lines.
type Plot struct {
	Title    string
	Subtitle string
	Lines    []Line
}

// NewPlot shows the analytics series next to the benchmark it is compared
// with.
func NewPlot(kpi string, universeID uint64, primary, bench series.Series) Plot {
	return Plot{
		Title:    title(kpi, universeID),
		Subtitle: fmt.Sprintf("Plotted with series %q", bench.Name),
		Lines: []Line{
			{Series: primary, Color: ColorAnalytics},
			{Series: bench, Color: ColorBenchmark},
		},
	}
}

// NewNormalizedPlot shows only the analytics series rescaled against the
// named benchmark.
func NewNormalizedPlot(kpi string, universeID uint64, normalized series.Series, benchName string) Plot {
	return Plot{
		Title:    title(kpi, universeID),
		Subtitle: fmt.Sprintf("Normalized over series %q", benchName),
		Lines:    []Line{{Series: normalized, Color: ColorNormalized}},
	}
}

func title(kpi string, universeID uint64) string {
	return fmt.Sprintf("%s for Experience ID %d", kpi, universeID)
}

// Render draws p onto w using backend b.
func Render(w io.Writer, b Backend, p Plot, opts Options) error {
	errFactory := errors.New()

	var points []series.Point
	for _, l := range p.Lines {
		points = append(points, l.Series.Points...)
	}
	dates, span, err := series.ComputeRange(points)
	if err != nil {
		if errors.HasCode(err, series.ErrEmptyInput) {
			return errFactory.Wrap(ErrEmptyPlot, err).WithMessage("nothing to plot")
		}
		return errFactory.Wrap(ErrDraw, err)
	}

	c := chart.Chart{
		Title: p.Title,
		TitleStyle: chart.Style{
			FontSize:  titleFontSize,
			FontColor: drawing.ColorBlack,
		},
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.Box{Top: headerHeight, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Range: newTimeRange(dates, opts.MaxTicks),
		},
		YAxis: chart.YAxis{
			Range: newValueRange(axis.New(span), opts.MaxTicks),
		},
		YAxisSecondary: chart.YAxis{
			Style: chart.Style{Hidden: true},
		},
	}

	for _, l := range p.Lines {
		if l.Series.Len() == 0 {
			continue
		}
		c.Series = append(c.Series, timeSeries(l))
	}
	c.Elements = []chart.Renderable{
		subtitle(p.Subtitle, c.GetWidth()),
		chart.Legend(&c),
	}

	if err := c.Render(b.Provider(), w); err != nil {
		return errFactory.Wrap(ErrDraw, err)
	}
	return nil
}

// RenderFile draws p into path, choosing the backend from its extension.
func RenderFile(path string, p Plot, opts Options) error {
	errFactory := errors.New()

	b, err := BackendFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(ErrWriteFile, err).WithData(path)
	}

	if err := Render(f, b, p, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errFactory.Wrap(ErrWriteFile, err).WithData(path)
	}
	return nil
}

func timeSeries(l Line) chart.TimeSeries {
	ts := chart.TimeSeries{
		Name: l.Series.Name,
		Style: chart.Style{
			StrokeColor: l.Color,
			StrokeWidth: strokeWidth,
		},
		XValues: make([]time.Time, len(l.Series.Points)),
		YValues: make([]float64, len(l.Series.Points)),
	}
	for i, p := range l.Series.Points {
		ts.XValues[i] = p.Time
		ts.YValues[i] = p.Value.Float64()
	}
	return ts
}

func subtitle(text string, width int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		if text == "" {
			return
		}
		r.SetFont(defaults.GetFont())
		r.SetFontColor(ColorBenchmark)
		r.SetFontSize(subtitleFontSize)

		box := r.MeasureText(text)
		x := (width >> 1) - (box.Width() >> 1)
		y := chart.DefaultTitleTop + 2*titleFontSize + box.Height()
		r.Text(text, x, y)
	}
}
