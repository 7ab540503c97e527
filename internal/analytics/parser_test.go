package analytics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chemiclast/rasorite/internal/analytics"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `Experience ID,4711

Breakdown,Date,Visits
Total,2024-05-01T00:00:00Z,120
Total,2024-05-02T00:00:00.000Z,135
Benchmark P50,2024-05-01 00:00:00,99.5
Benchmark P50,2024-05-02,101.25
`

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	path := writeExport(t, "Visits, May 1 2024 - May 2 2024.csv", export)

	data, err := analytics.ParseFile(path, analytics.Options{})
	require.NoError(t, err)

	assert.Equal(t, analytics.Visits, data.KPI)
	assert.Equal(t, uint64(4711), data.UniverseID)
	assert.Equal(t, []string{"Total", "Benchmark P50"}, data.Dataset.Names())
	assert.Zero(t, data.Skipped)

	total, ok := data.Dataset.Get("Total")
	require.True(t, ok)
	require.Len(t, total.Points, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), total.Points[0].Time)
	assert.Equal(t, value.Integer(120), total.Points[0].Value)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), total.Points[1].Time)

	bench, ok := data.Dataset.Benchmark()
	require.True(t, ok)
	require.Len(t, bench.Points, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), bench.Points[0].Time)
	assert.Equal(t, value.FromFloat64(99.5), bench.Points[0].Value)
	assert.Equal(t, value.FromFloat64(101.25), bench.Points[1].Value)
}

func TestKPIFromFileName(t *testing.T) {
	tests := []struct {
		name string
		want analytics.KPIType
		code errors.ErrorCode
	}{
		{name: "DailyActiveUsers, 2024-05-01 - 2024-05-07.csv", want: analytics.DailyActiveUsers},
		{name: "/tmp/exports/TotalPlayTimeHours, last week.csv", want: analytics.TotalPlayTimeHours},
		{name: "MonthlyActiveUsers,.csv", want: analytics.MonthlyActiveUsers},
		{name: "export.csv", code: analytics.ErrMissingKPI},
		{name: "Revenue, 2024.csv", code: analytics.ErrIncompatibleKPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kpi, err := analytics.KPIFromFileName(tt.name)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kpi)
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{name: "empty", content: "", code: analytics.ErrEmptyFile},
		{name: "blank lines only", content: "\n\n", code: analytics.ErrEmptyFile},
		{name: "wrong first line", content: "Date,Visits\n2024-05-01,1\n", code: analytics.ErrMissingHeader},
		{name: "id without value", content: "Experience ID\nDate,Visits\n", code: analytics.ErrInvalidHeader},
		{name: "id not a number", content: "Experience ID,abc\n\nDate,Visits\n", code: analytics.ErrInvalidHeader},
		{name: "no column header", content: "Experience ID,12\n\n", code: analytics.ErrMissingHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analytics.Parse(strings.NewReader(tt.content), analytics.Visits, analytics.Options{})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestParseInvalidRecordAborts(t *testing.T) {
	content := export + "Total,2024-05-03T00:00:00Z,lots\n"

	_, err := analytics.Parse(strings.NewReader(content), analytics.Visits, analytics.Options{})
	require.Error(t, err)
	assert.Equal(t, analytics.ErrInvalidRecord, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, value.ErrCannotParse))
}

func TestParseSkipsInvalidRecords(t *testing.T) {
	content := export +
		"Total,2024-05-03T00:00:00Z,lots\n" +
		"Total,yesterday,5\n" +
		"Total,2024-05-04\n" +
		"Total,2024-05-05,7\n"

	data, err := analytics.Parse(strings.NewReader(content), analytics.Visits,
		analytics.Options{SkipInvalidRecords: true})
	require.NoError(t, err)

	assert.Equal(t, 3, data.Skipped)
	total, ok := data.Dataset.Get("Total")
	require.True(t, ok)
	require.Len(t, total.Points, 3)
	assert.Equal(t, value.Integer(7), total.Points[2].Value)
}

func TestParseRejectsUnknownKPI(t *testing.T) {
	_, err := analytics.Parse(strings.NewReader(export), analytics.KPIType("Revenue"), analytics.Options{})
	require.Error(t, err)
	assert.Equal(t, analytics.ErrIncompatibleKPI, errors.CodeOf(err))
}

func TestParseFileMissing(t *testing.T) {
	_, err := analytics.ParseFile(filepath.Join(t.TempDir(), "Visits, gone.csv"), analytics.Options{})
	require.Error(t, err)
	assert.Equal(t, analytics.ErrUnreadableFile, errors.CodeOf(err))
}
