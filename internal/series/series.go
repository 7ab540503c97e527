// Package series holds named time series of domain values and the range and
// normalization math applied to them before plotting.
package series

import (
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/value"
)

const (
	// BenchmarkPrefix marks reference series.
	BenchmarkPrefix = "Benchmark"
	// PrimaryPrefix marks the analytics series of an export.
	PrimaryPrefix = "Total"
)

// Point is a single sample. Time is always UTC.
type Point struct {
	Time  time.Time
	Value value.Value
}

// Series is a named sequence of points in insertion order, which is not
// necessarily chronological.
type Series struct {
	Name   string
	Points []Point
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// IsBenchmark reports whether s is a reference series.
func (s Series) IsBenchmark() bool {
	return strings.HasPrefix(s.Name, BenchmarkPrefix)
}

// DateSpan is the closed time interval covered by a set of points.
type DateSpan struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (d DateSpan) Duration() time.Duration {
	return d.End.Sub(d.Start)
}

// Dataset is a set of series keyed by name that remembers the order in which
// names were first seen.
type Dataset struct {
	names  []string
	series map[string]*Series
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{series: make(map[string]*Series)}
}

// Append adds p to the series called name, creating it if needed.
func (d *Dataset) Append(name string, p Point) {
	s, ok := d.series[name]
	if !ok {
		s = &Series{Name: name}
		d.series[name] = s
		d.names = append(d.names, name)
	}
	s.Points = append(s.Points, p)
}

// Set stores s, replacing any series with the same name in place.
func (d *Dataset) Set(s Series) {
	if _, ok := d.series[s.Name]; !ok {
		d.names = append(d.names, s.Name)
	}
	points := make([]Point, len(s.Points))
	copy(points, s.Points)
	d.series[s.Name] = &Series{Name: s.Name, Points: points}
}

// Get returns the series called name.
func (d *Dataset) Get(name string) (Series, bool) {
	s, ok := d.series[name]
	if !ok {
		return Series{}, false
	}
	return *s, true
}

// Names returns series names in first-seen order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Len returns the number of series.
func (d *Dataset) Len() int {
	return len(d.names)
}

// FindPrefix returns the first series whose name starts with prefix.
func (d *Dataset) FindPrefix(prefix string) (Series, bool) {
	for _, name := range d.names {
		if strings.HasPrefix(name, prefix) {
			return *d.series[name], true
		}
	}
	return Series{}, false
}

// Benchmark returns the first reference series.
func (d *Dataset) Benchmark() (Series, bool) {
	return d.FindPrefix(BenchmarkPrefix)
}

// Primary returns the analytics series: the first one named with
// PrimaryPrefix, or failing that the first series that is not a benchmark.
func (d *Dataset) Primary() (Series, bool) {
	if s, ok := d.FindPrefix(PrimaryPrefix); ok {
		return s, true
	}
	for _, name := range d.names {
		if s := d.series[name]; !s.IsBenchmark() {
			return *s, true
		}
	}
	return Series{}, false
}

// AllPoints concatenates the points of every series in name order.
func (d *Dataset) AllPoints() []Point {
	var n int
	for _, s := range d.series {
		n += len(s.Points)
	}
	points := make([]Point, 0, n)
	for _, name := range d.names {
		points = append(points, d.series[name].Points...)
	}
	return points
}
