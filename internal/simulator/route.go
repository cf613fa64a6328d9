package simulator

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jengzang/accident-risk-go/internal/records"
	"github.com/jengzang/accident-risk-go/internal/spatial"
)

// LoadRouteFile reads a route from a CSV file of lat,lon lines
func LoadRouteFile(ctx context.Context, path string) ([]spatial.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open route: %w", err)
	}
	defer f.Close()
	return LoadRoute(ctx, f)
}

// LoadRoute parses lat,lon lines. A first line that does not parse is
// treated as a header; any later bad line fails the route.
func LoadRoute(ctx context.Context, r io.Reader) ([]spatial.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var route []spatial.Point
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}

		p, err := parsePoint(fields)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRoute, line, err)
		}
		route = append(route, p)
	}
	if len(route) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidRoute, len(route))
	}
	return route, nil
}

func parsePoint(fields []string) (spatial.Point, error) {
	if len(fields) < 2 {
		return spatial.Point{}, fmt.Errorf("expected lat,lon, got %q", strings.Join(fields, ","))
	}
	lat, err := records.ParseCoordinate(fields[0], 90)
	if err != nil {
		return spatial.Point{}, err
	}
	lon, err := records.ParseCoordinate(fields[1], 180)
	if err != nil {
		return spatial.Point{}, err
	}
	return spatial.Point{Lat: lat, Lon: lon}, nil
}
