package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/accident-risk-go/internal/index"
	"github.com/jengzang/accident-risk-go/internal/models"
	"github.com/jengzang/accident-risk-go/internal/records"
	"github.com/jengzang/accident-risk-go/internal/risk"
	"github.com/jengzang/accident-risk-go/internal/stats"
)

// ErrInvalidQueryPoint is returned for non-finite or out-of-range coordinates
var ErrInvalidQueryPoint = errors.New("invalid query point")

// Result is the outcome of one risk query
type Result struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	At         time.Time  `json:"at"`
	Spatial    int        `json:"spatial_count"`
	SameHour   int        `json:"same_hour_count"`
	SameSeason int        `json:"same_season_count"`
	Total      int        `json:"total"`
	Level      risk.Level `json:"risk_level"`
}

// Counts returns the per-dimension counts
func (r Result) Counts() risk.Counts {
	return risk.Counts{Spatial: r.Spatial, SameHour: r.SameHour, SameSeason: r.SameSeason}
}

// Stats describes a built engine
type Stats struct {
	Summary       models.LoadSummary `json:"load_summary"`
	Records       int                `json:"records"`
	Design        index.Design       `json:"temporal_design"`
	SpatialSize   int                `json:"spatial_index_size"`
	HourIndexSize int                `json:"hour_index_size"`
	SeasonSize    int                `json:"season_index_size"`
	BuildDuration time.Duration      `json:"build_duration_ns"`
	Profile       stats.Profile      `json:"profile"`
}

// Engine answers risk queries against a fixed record store.
// It holds no mutable state; Query is safe for concurrent use.
type Engine struct {
	cfg     Config
	store   *records.Store
	spatial index.SpatialIndex
	hour    index.TemporalIndex
	season  index.TemporalIndex
	scorer  *risk.Scorer
	built   time.Duration
	profile stats.Profile
	now     func() time.Time
}

// New validates cfg and bulk-builds the spatial index and both temporal
// indexes concurrently. The result does not depend on scheduling: every
// index is built independently from the same immutable record slice.
func New(ctx context.Context, store *records.Store, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil record store", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := risk.NewScorer(cfg.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	start := time.Now()
	recs := store.Records()
	e := &Engine{cfg: cfg, store: store, scorer: scorer, now: time.Now}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := index.NewRTree(recs, cfg.BoxEpsilon)
		if err != nil {
			return fmt.Errorf("failed to build spatial index: %w", err)
		}
		e.spatial = t
		return nil
	})
	g.Go(func() error {
		x, err := buildTemporal(recs, index.HourOfDay, cfg)
		if err != nil {
			return fmt.Errorf("failed to build hour index: %w", err)
		}
		e.hour = x
		return nil
	})
	g.Go(func() error {
		x, err := buildTemporal(recs, index.DayOfYear, cfg)
		if err != nil {
			return fmt.Errorf("failed to build season index: %w", err)
		}
		e.season = x
		return nil
	})
	g.Go(func() error {
		e.profile = stats.NewProfile(recs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.built = time.Since(start)

	log.Printf("[Engine] Built %s indexes over %d records in %v", cfg.Design, len(recs), e.built)
	return e, nil
}

func buildTemporal(recs []models.AccidentRecord, dim index.Dimension, cfg Config) (index.TemporalIndex, error) {
	if cfg.Design == index.DesignGrid {
		return index.NewGridBucketIndex(recs, dim, cfg.Grid)
	}
	return index.NewIntervalIndex(recs, dim, index.IntervalOptions{
		SearchRadius: cfg.SearchRadius,
		Epsilon:      cfg.BoxEpsilon,
		HalfWidth:    cfg.halfWidth(dim),
	})
}

// ValidatePoint checks that lat/lon are finite and in range
func ValidatePoint(lat, lon float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidQueryPoint, lat)
	case math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidQueryPoint, lon)
	}
	return nil
}

// Query scores the point at time at. A zero at means now.
func (e *Engine) Query(lat, lon float64, at time.Time) (Result, error) {
	if err := ValidatePoint(lat, lon); err != nil {
		return Result{}, err
	}
	if at.IsZero() {
		at = e.now()
	}
	at = at.In(e.cfg.location())

	counts := risk.Counts{
		Spatial:    len(e.spatial.Query(index.BoxAround(lat, lon, e.cfg.SearchRadius))),
		SameHour:   len(e.hour.Query(lat, lon, at)),
		SameSeason: len(e.season.Query(lat, lon, at)),
	}
	return Result{
		Latitude:   lat,
		Longitude:  lon,
		At:         at,
		Spatial:    counts.Spatial,
		SameHour:   counts.SameHour,
		SameSeason: counts.SameSeason,
		Total:      counts.Total(),
		Level:      e.scorer.Classify(counts),
	}, nil
}

// Nearby returns the records inside the search box around the point
func (e *Engine) Nearby(lat, lon float64) ([]models.AccidentRecord, error) {
	if err := ValidatePoint(lat, lon); err != nil {
		return nil, err
	}
	ids := e.spatial.Query(index.BoxAround(lat, lon, e.cfg.SearchRadius))
	out := make([]models.AccidentRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := e.store.Get(id); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Record looks up a record by ID
func (e *Engine) Record(id models.RecordID) (models.AccidentRecord, bool) {
	return e.store.Get(id)
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Stats reports index sizes and the load summary
func (e *Engine) Stats() Stats {
	return Stats{
		Summary:       e.store.Summary(),
		Records:       e.store.Count(),
		Design:        e.cfg.Design,
		SpatialSize:   e.spatial.Len(),
		HourIndexSize: e.hour.Len(),
		SeasonSize:    e.season.Len(),
		BuildDuration: e.built,
		Profile:       e.profile,
	}
}
