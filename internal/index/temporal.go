package index

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dhconnelly/rtreego"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// Design selects a TemporalIndex implementation
type Design string

const (
	// DesignInterval tags each spatial entry with a recurrence window and post-filters hits
	DesignInterval Design = "interval"
	// DesignGrid keys records by (grid cell, time bucket) and expands the query cell by rings
	DesignGrid Design = "grid"
)

// ParseDesign parses a design name
func ParseDesign(s string) (Design, error) {
	switch d := Design(strings.ToLower(strings.TrimSpace(s))); d {
	case DesignInterval, DesignGrid:
		return d, nil
	default:
		return "", fmt.Errorf("unknown temporal design %q", s)
	}
}

// TemporalIndex finds records near a point that also recur at a given time
type TemporalIndex interface {
	// Query returns matching IDs in ascending order. Only at's wall clock is used.
	Query(lat, lon float64, at time.Time) []models.RecordID
	Dimension() Dimension
	Design() Design
	Len() int
}

// IntervalOptions configures an IntervalIndex
type IntervalOptions struct {
	SearchRadius float64 // query box half-width, degrees
	Epsilon      float64 // record box half-width, degrees
	HalfWidth    int     // recurrence window half-width in dimension units
}

type intervalEntry struct {
	id     models.RecordID
	rect   rtreego.Rect
	window Window
}

func (e *intervalEntry) Bounds() rtreego.Rect {
	return e.rect
}

// IntervalIndex stores each record box with its recurrence window and filters
// box hits by circular window containment
type IntervalIndex struct {
	tree *rtreego.Rtree
	dim  Dimension
	opts IntervalOptions
}

// NewIntervalIndex bulk-builds an interval-tagged index on one dimension
func NewIntervalIndex(records []models.AccidentRecord, dim Dimension, opts IntervalOptions) (*IntervalIndex, error) {
	if opts.Epsilon <= 0 {
		return nil, fmt.Errorf("box epsilon must be positive, got %v", opts.Epsilon)
	}
	if opts.SearchRadius < 0 {
		return nil, fmt.Errorf("search radius must not be negative, got %v", opts.SearchRadius)
	}
	if opts.HalfWidth < 0 {
		return nil, fmt.Errorf("%s half-width must not be negative, got %d", dim, opts.HalfWidth)
	}

	objs := make([]rtreego.Spatial, 0, len(records))
	for _, rec := range records {
		r, err := BoxAround(rec.Latitude, rec.Longitude, opts.Epsilon).rect()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		objs = append(objs, &intervalEntry{
			id:     rec.ID,
			rect:   r,
			window: NewWindow(dim.Of(rec), opts.HalfWidth),
		})
	}
	return &IntervalIndex{
		tree: rtreego.NewTree(2, minChildren, maxChildren, objs...),
		dim:  dim,
		opts: opts,
	}, nil
}

// Query intersects the search box and keeps hits whose window contains at
func (x *IntervalIndex) Query(lat, lon float64, at time.Time) []models.RecordID {
	r, err := BoxAround(lat, lon, x.opts.SearchRadius).rect()
	if err != nil {
		return nil
	}
	v := x.dim.At(at)
	period := x.dim.Period()
	inWindow := func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		return !obj.(*intervalEntry).window.Contains(v, period), false
	}

	hits := x.tree.SearchIntersect(r, inWindow)
	ids := make([]models.RecordID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*intervalEntry).id)
	}
	slices.Sort(ids)
	return ids
}

func (x *IntervalIndex) Dimension() Dimension { return x.dim }
func (x *IntervalIndex) Design() Design       { return DesignInterval }
func (x *IntervalIndex) Len() int             { return x.tree.Size() }
