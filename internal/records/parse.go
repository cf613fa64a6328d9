package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// TimestampLayout is the source timestamp format (day.month.year,hour:minute).
// Single-digit day, month and hour are accepted.
const TimestampLayout = "2.1.2006,15:04"

// ParseTimestamp parses a source timestamp in loc
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.ParseInLocation(TimestampLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

// ParseCoordinate parses a finite coordinate bounded by ±limit degrees
func ParseCoordinate(value string, limit float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse coordinate %q: %w", value, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", value)
	}
	if f < -limit || f > limit {
		return 0, fmt.Errorf("coordinate %v outside [-%v, %v]", f, limit, limit)
	}
	return f, nil
}

// ParseRow validates a raw row and derives the recurrence fields.
// The returned record has no ID; the store assigns it.
func ParseRow(row models.RawRow, loc *time.Location) (models.AccidentRecord, error) {
	lat, err := ParseCoordinate(row.Latitude, 90)
	if err != nil {
		return models.AccidentRecord{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := ParseCoordinate(row.Longitude, 180)
	if err != nil {
		return models.AccidentRecord{}, fmt.Errorf("longitude: %w", err)
	}
	ts, err := ParseTimestamp(row.DateTime, loc)
	if err != nil {
		return models.AccidentRecord{}, err
	}

	return models.AccidentRecord{
		SourceID:     strings.TrimSpace(row.SourceID),
		Latitude:     lat,
		Longitude:    lon,
		Timestamp:    ts,
		HourOfDay:    ts.Hour(),
		DayOfYear:    ts.YearDay(),
		Category:     row.Category,
		City:         row.City,
		Municipality: row.Municipality,
		Description1: row.Description1,
		Description2: row.Description2,
	}, nil
}
