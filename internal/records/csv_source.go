package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// CSVSource reads rows from a CSV export of the accident spreadsheet
type CSVSource struct {
	Path      string
	HasHeader bool
	Comma     rune
}

// Name returns the file path
func (c *CSVSource) Name() string {
	return c.Path
}

// ReadRows reads every row of the file. Short rows are kept with empty fields
// so that the store filters them and counts them as skipped.
func (c *CSVSource) ReadRows(ctx context.Context) ([]models.RawRow, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, &LoadError{Source: c.Path, Err: err}
	}
	defer f.Close()

	rows, err := ReadCSV(ctx, f, c.Comma, c.HasHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.Path, err)
	}
	return rows, nil
}

// ReadCSV decodes raw rows from r
func ReadCSV(ctx context.Context, r io.Reader, comma rune, hasHeader bool) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	if comma != 0 {
		reader.Comma = comma
	}

	var rows []models.RawRow
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// lazy quotes and variable field counts leave only read errors here
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if hasHeader {
				continue
			}
		}
		rows = append(rows, rowFromFields(fields))
	}
	return rows, nil
}

func rowFromFields(fields []string) models.RawRow {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return models.RawRow{
		SourceID:     get(0),
		City:         get(1),
		Municipality: get(2),
		DateTime:     get(3),
		Longitude:    get(4),
		Latitude:     get(5),
		Category:     get(6),
		Description1: get(7),
		Description2: get(8),
	}
}
