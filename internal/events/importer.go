package events

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// Column headers required in a battle-assembly roster export.
const (
	columnDates     = "Dates"
	columnMandatory = "Mandatory"
)

// assemblyRow is one parsed line of a roster export.
type assemblyRow struct {
	Type      string
	Period    bool
	StartTime time.Time
	EndTime   time.Time
}

// parseAssemblies decodes a battle-assembly roster CSV. The first record is
// the header and must carry the Dates and Mandatory columns; every following
// record becomes one row. Dates look like "1-2 August 2024" for a drill
// weekend or "15 August 2024" for a single day.
func parseAssemblies(data []byte) ([]assemblyRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed csv: %v", httpx.ErrValidation, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: csv has no data rows", httpx.ErrValidation)
	}

	datesIdx, mandatoryIdx := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case columnDates:
			datesIdx = i
		case columnMandatory:
			mandatoryIdx = i
		}
	}
	if datesIdx < 0 || mandatoryIdx < 0 {
		return nil, fmt.Errorf("%w: csv missing %s or %s column", httpx.ErrValidation, columnDates, columnMandatory)
	}

	rows := make([]assemblyRow, 0, len(records)-1)
	for n, record := range records[1:] {
		start, end, period, err := parseDateRange(record[datesIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", httpx.ErrValidation, n+2, err)
		}
		rows = append(rows, assemblyRow{
			Type:      mandatoryType(record[mandatoryIdx]),
			Period:    period,
			StartTime: start,
			EndTime:   end,
		})
	}
	return rows, nil
}

// parseDateRange turns "1-2 August 2024" into the midnight start of the first
// day and the end of the last day, both UTC. A single day yields period=false.
func parseDateRange(raw string) (start, end time.Time, period bool, err error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 3 {
		return start, end, false, fmt.Errorf("dates %q: want <days> <month> <year>", raw)
	}

	monthTime, err := time.Parse("January", fields[1])
	if err != nil {
		return start, end, false, fmt.Errorf("dates %q: unknown month %q", raw, fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return start, end, false, fmt.Errorf("dates %q: bad year %q", raw, fields[2])
	}

	days := strings.SplitN(fields[0], "-", 2)
	firstDay, err := strconv.Atoi(days[0])
	if err != nil {
		return start, end, false, fmt.Errorf("dates %q: bad day %q", raw, days[0])
	}
	lastDay := firstDay
	if len(days) == 2 {
		lastDay, err = strconv.Atoi(days[1])
		if err != nil {
			return start, end, false, fmt.Errorf("dates %q: bad day %q", raw, days[1])
		}
	}

	start = time.Date(year, monthTime.Month(), firstDay, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, monthTime.Month(), lastDay, 23, 59, 59, 0, time.UTC)
	return start, end, lastDay != firstDay, nil
}

// mandatoryType maps the Mandatory column value to an event type. Anything
// besides YES and NO marks the row Invalid so a human can review it.
func mandatoryType(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "YES":
		return TypeMandatory
	case "NO":
		return TypeOptional
	default:
		return TypeInvalid
	}
}
