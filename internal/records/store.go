package records

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// ErrSourceUnavailable is returned when a raw source cannot be opened at all
var ErrSourceUnavailable = errors.New("record source unavailable")

// LoadError reports a source that could not be opened. Row-level problems never produce it.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to open record source %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// Source produces raw rows in source order
type Source interface {
	Name() string
	ReadRows(ctx context.Context) ([]models.RawRow, error)
}

// Store is the immutable set of accepted accident records.
// Record IDs are dense indexes into the store in load order.
type Store struct {
	records []models.AccidentRecord
	summary models.LoadSummary
}

// Load reads every row from src and keeps the ones that parse.
// It fails only when the source itself cannot be read.
func Load(ctx context.Context, src Source, loc *time.Location) (*Store, error) {
	rows, err := src.ReadRows(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	s := FromRows(src.Name(), rows, loc)
	log.Printf("[RecordStore] Loaded %d of %d rows from %s (%d skipped)",
		s.summary.Loaded, s.summary.Total, s.summary.Source, s.summary.Skipped)
	return s, nil
}

// FromRows builds a store from already materialized rows
func FromRows(source string, rows []models.RawRow, loc *time.Location) *Store {
	s := &Store{
		records: make([]models.AccidentRecord, 0, len(rows)),
		summary: models.LoadSummary{Source: source, Total: len(rows)},
	}
	for _, row := range rows {
		rec, err := ParseRow(row, loc)
		if err != nil {
			s.summary.Skipped++
			continue
		}
		rec.ID = models.RecordID(len(s.records))
		s.records = append(s.records, rec)
	}
	s.summary.Loaded = len(s.records)
	return s
}

// Records returns a copy of all records ordered by ID
func (s *Store) Records() []models.AccidentRecord {
	return slices.Clone(s.records)
}

// Get returns the record with the given ID
func (s *Store) Get(id models.RecordID) (models.AccidentRecord, bool) {
	if id < 0 || int(id) >= len(s.records) {
		return models.AccidentRecord{}, false
	}
	return s.records[id], true
}

// Count returns the number of accepted records
func (s *Store) Count() int {
	return len(s.records)
}

// Summary returns the load summary
func (s *Store) Summary() models.LoadSummary {
	return s.summary
}
