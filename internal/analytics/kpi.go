package analytics

import (
	"path/filepath"
	"regexp"

	"github.com/chemiclast/rasorite/internal/errors"
)

// KPIType names a metric exported by the analytics dashboard.
type KPIType string

const (
	DailyActiveUsers   KPIType = "DailyActiveUsers"
	MonthlyActiveUsers KPIType = "MonthlyActiveUsers"
	Visits             KPIType = "Visits"
	TotalPlayTimeHours KPIType = "TotalPlayTimeHours"
)

// KPITypes lists every supported KPI.
var KPITypes = []KPIType{DailyActiveUsers, MonthlyActiveUsers, Visits, TotalPlayTimeHours}

var fileNamePattern = regexp.MustCompile(`([^ -]+?),`)

func (k KPIType) String() string {
	return string(k)
}

// IsValid reports whether k is a supported KPI.
func (k KPIType) IsValid() bool {
	for _, known := range KPITypes {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKPIType converts s into a supported KPI.
func ParseKPIType(s string) (KPIType, error) {
	k := KPIType(s)
	if !k.IsValid() {
		return "", errors.New().WithData(ErrIncompatibleKPI, s)
	}
	return k, nil
}

// KPIFromFileName extracts the KPI from the name of an exported file, which
// the dashboard writes as "<KPI>, <details>.csv".
func KPIFromFileName(path string) (KPIType, error) {
	m := fileNamePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", errors.New().WithData(ErrMissingKPI, filepath.Base(path))
	}
	return ParseKPIType(m[1])
}
