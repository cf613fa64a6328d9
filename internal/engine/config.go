package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jengzang/accident-risk-go/internal/index"
	"github.com/jengzang/accident-risk-go/internal/risk"
)

// ErrInvalidConfig marks a configuration rejected at construction time
var ErrInvalidConfig = errors.New("invalid query configuration")

// Config is the immutable query configuration. It is read once by New.
type Config struct {
	SearchRadius  float64 // query box half-width, degrees
	BoxEpsilon    float64 // record box half-width, degrees
	HourHalfWidth int     // ± hours for the same-hour window
	DayHalfWidth  int     // ± days for the same-season window

	Design index.Design
	Grid   index.GridOptions

	Thresholds risk.Thresholds

	// Location converts query times to wall clock; records are parsed in the same zone
	Location *time.Location
}

// DefaultConfig returns the parameters of the field deployment:
// ~500 m search box, ±1 hour, ±30 days, interval design
func DefaultConfig() Config {
	return Config{
		SearchRadius:  0.0045,
		BoxEpsilon:    0.0001,
		HourHalfWidth: 1,
		DayHalfWidth:  30,
		Design:        index.DesignInterval,
		Grid: index.GridOptions{
			Level:       14,
			BucketWidth: 1,
			RingRadius:  1,
		},
		Thresholds: risk.DefaultThresholds(),
		Location:   time.Local,
	}
}

// Validate rejects configurations that could only fail later at query time
func (c Config) Validate() error {
	if math.IsNaN(c.SearchRadius) || math.IsInf(c.SearchRadius, 0) || c.SearchRadius < 0 {
		return fmt.Errorf("%w: search radius must be a non-negative number, got %v", ErrInvalidConfig, c.SearchRadius)
	}
	if math.IsNaN(c.BoxEpsilon) || math.IsInf(c.BoxEpsilon, 0) || c.BoxEpsilon <= 0 {
		return fmt.Errorf("%w: box epsilon must be positive, got %v", ErrInvalidConfig, c.BoxEpsilon)
	}
	if c.HourHalfWidth < 0 || c.DayHalfWidth < 0 {
		return fmt.Errorf("%w: half-widths must not be negative (hour %d, day %d)", ErrInvalidConfig, c.HourHalfWidth, c.DayHalfWidth)
	}
	switch c.Design {
	case index.DesignInterval:
	case index.DesignGrid:
		if err := c.Grid.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown temporal design %q", ErrInvalidConfig, c.Design)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Config) halfWidth(dim index.Dimension) int {
	if dim == index.DayOfYear {
		return c.DayHalfWidth
	}
	return c.HourHalfWidth
}
