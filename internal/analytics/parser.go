// Package analytics reads analytics dashboard CSV exports into series.
package analytics

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/chemiclast/rasorite/internal/value"
)

const experienceIDLabel = "Experience ID"

// timeLayouts are tried in order for the timestamp column.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options controls how malformed input is handled.
type Options struct {
	// SkipInvalidRecords drops malformed data rows instead of failing the
	// whole file.
	SkipInvalidRecords bool
	Logger             logger.Logger
}

// Data is a parsed export.
type Data struct {
	KPI        KPIType
	UniverseID uint64
	Dataset    *series.Dataset
	// Skipped counts data rows dropped under SkipInvalidRecords.
	Skipped int
}

// ParseFile reads the export at path. The KPI is taken from the file name.
func ParseFile(path string, opts Options) (*Data, error) {
	kpi, err := KPIFromFileName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New().Wrap(ErrUnreadableFile, err).WithData(path)
	}
	defer f.Close()

	return Parse(f, kpi, opts)
}

// Parse reads an export from r. The first record holds the experience ID,
// the next non-blank record is the column header, and every record after it
// is a series,timestamp,value row.
func Parse(r io.Reader, kpi KPIType, opts Options) (*Data, error) {
	if !kpi.IsValid() {
		return nil, errors.New().WithData(ErrIncompatibleKPI, string(kpi))
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New().New(ErrEmptyFile)
	}
	if err != nil {
		return nil, errors.New().Wrap(ErrUnreadableFile, err)
	}
	universeID, err := parseUniverseID(first)
	if err != nil {
		return nil, err
	}

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, errors.New().WithMessage(ErrMissingHeader, "missing column header")
		}
		return nil, errors.New().Wrap(ErrUnreadableFile, err)
	}

	data := &Data{
		KPI:        kpi,
		UniverseID: universeID,
		Dataset:    series.NewDataset(),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var line int
		if err == nil {
			line, _ = reader.FieldPos(0)
			var p series.Point
			var name string
			if name, p, err = parseRecord(record); err == nil {
				data.Dataset.Append(name, p)
				continue
			}
		} else {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
		}

		if !opts.SkipInvalidRecords {
			return nil, errors.New().Wrap(ErrInvalidRecord, err).WithData(line)
		}
		data.Skipped++
		log.Warn().Int("line", line).Err(err).Msg("Skipping invalid record")
	}

	log.Debug().
		Uint64("universe_id", universeID).
		Str("kpi", kpi.String()).
		Int("series", data.Dataset.Len()).
		Int("skipped", data.Skipped).
		Msg("Parsed analytics export")

	return data, nil
}

func parseUniverseID(record []string) (uint64, error) {
	if len(record) == 0 || strings.TrimSpace(record[0]) != experienceIDLabel {
		return 0, errors.New().WithMessage(ErrMissingHeader,
			"first line must hold the Experience ID")
	}
	if len(record) < 2 {
		return 0, errors.New().WithMessage(ErrInvalidHeader, "Experience ID line has no value")
	}

	id, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrInvalidHeader, err).WithData(record[1])
	}
	return id, nil
}

func parseRecord(record []string) (string, series.Point, error) {
	if len(record) < 3 {
		return "", series.Point{}, errors.New().WithData(ErrInvalidRecord, strings.Join(record, ","))
	}

	ts, err := parseTime(strings.TrimSpace(record[1]))
	if err != nil {
		return "", series.Point{}, err
	}
	v, err := value.Parse(strings.TrimSpace(record[2]))
	if err != nil {
		return "", series.Point{}, err
	}
	return record[0], series.Point{Time: ts, Value: v}, nil
}

func parseTime(text string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New().WithData(ErrInvalidRecord, text).
		WithMessage("unrecognized timestamp")
}
