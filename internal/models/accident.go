package models

import "time"

// RecordID is the dense arena index of an accepted record (0..n-1)
type RecordID int

// RawRow is one unvalidated row from a raw accident source.
// Field layout follows the published open-data spreadsheet:
// 0=id, 1=city, 2=municipality, 3=datetime, 4=lon, 5=lat, 6=damage, 7=desc1, 8=desc2
type RawRow struct {
	SourceID     string `json:"source_id" db:"source_id"`
	City         string `json:"city,omitempty" db:"city"`
	Municipality string `json:"municipality,omitempty" db:"municipality"`
	DateTime     string `json:"date_time" db:"date_time"` // Format: DD.MM.YYYY,HH:MM
	Longitude    string `json:"longitude" db:"longitude"`
	Latitude     string `json:"latitude" db:"latitude"`
	Category     string `json:"category,omitempty" db:"category"`
	Description1 string `json:"description1,omitempty" db:"description1"`
	Description2 string `json:"description2,omitempty" db:"description2"`
}

// AccidentRecord is a validated, immutable accident record
type AccidentRecord struct {
	ID        RecordID  `json:"id"`
	SourceID  string    `json:"source_id,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	HourOfDay int       `json:"hour_of_day"` // 0-23
	DayOfYear int       `json:"day_of_year"` // 1-366
	Category  string    `json:"category,omitempty"`

	City         string `json:"city,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Description1 string `json:"description1,omitempty"`
	Description2 string `json:"description2,omitempty"`
}

// LoadSummary aggregates the outcome of a bulk load
type LoadSummary struct {
	Source  string `json:"source"`
	Total   int    `json:"total_rows"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}
