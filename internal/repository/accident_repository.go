package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/accident-risk-go/internal/database"
	"github.com/jengzang/accident-risk-go/internal/models"
)

// AccidentRepository reads and writes raw accident rows in the accidents table.
// It implements records.Source.
type AccidentRepository struct {
	db     *sql.DB
	driver string
	name   string
}

// NewAccidentRepository creates a new accident repository
func NewAccidentRepository(db *sql.DB, driver, name string) *AccidentRepository {
	return &AccidentRepository{db: db, driver: driver, name: name}
}

// Name identifies the source in load summaries
func (r *AccidentRepository) Name() string {
	return r.name
}

// ReadRows returns every raw row in insertion order
func (r *AccidentRepository) ReadRows(ctx context.Context) ([]models.RawRow, error) {
	query := `SELECT source_id, city, municipality, date_time,
		longitude, latitude, category, description1, description2
		FROM accidents
		ORDER BY row_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accidents: %w", err)
	}
	defer rows.Close()

	var out []models.RawRow
	for rows.Next() {
		var row models.RawRow
		err := rows.Scan(
			&row.SourceID, &row.City, &row.Municipality, &row.DateTime,
			&row.Longitude, &row.Latitude, &row.Category, &row.Description1, &row.Description2,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accident row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accident rows: %w", err)
	}

	return out, nil
}

// Count returns the number of stored raw rows
func (r *AccidentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accidents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count accidents: %w", err)
	}
	return n, nil
}

// InsertRows appends raw rows after the current last row, unvalidated
func (r *AccidentRepository) InsertRows(ctx context.Context, rows []models.RawRow) (int, error) {
	insert := database.Rebind(r.driver, `INSERT INTO accidents
		(row_id, source_id, city, municipality, date_time,
		 longitude, latitude, category, description1, description2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	inserted := 0
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		var next int64
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(row_id), 0) FROM accidents").Scan(&next); err != nil {
			return fmt.Errorf("failed to read last row id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			next++
			_, err := stmt.ExecContext(ctx, next,
				row.SourceID, row.City, row.Municipality, row.DateTime,
				row.Longitude, row.Latitude, row.Category, row.Description1, row.Description2,
			)
			if err != nil {
				return fmt.Errorf("failed to insert row %d: %w", next, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
