package index

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang/geo/s2"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// MaxGridLevel is the finest S2 cell level
const MaxGridLevel = 30

// GridOptions configures a GridBucketIndex
type GridOptions struct {
	Level        int // S2 cell level; pick one whose cell size approximates the search radius
	BucketWidth  int // hours per bucket, must divide 24
	BucketSpread int // extra buckets matched on each side of the query bucket, 0 = exact
	RingRadius   int // neighbor hops expanded around the query cell
}

// Validate checks the options
func (o GridOptions) Validate() error {
	if o.Level < 0 || o.Level > MaxGridLevel {
		return fmt.Errorf("grid level must be in [0, %d], got %d", MaxGridLevel, o.Level)
	}
	if o.BucketWidth <= 0 || HoursPerDay%o.BucketWidth != 0 {
		return fmt.Errorf("bucket width must be a positive divisor of 24, got %d", o.BucketWidth)
	}
	if o.BucketSpread < 0 {
		return fmt.Errorf("bucket spread must not be negative, got %d", o.BucketSpread)
	}
	if o.RingRadius < 0 {
		return fmt.Errorf("ring radius must not be negative, got %d", o.RingRadius)
	}
	return nil
}

type gridKey struct {
	cell   s2.CellID
	bucket int
}

// GridBucketIndex maps (cell, time bucket) to record IDs.
// On HourOfDay the bucket is the hour slot; on DayOfYear it is the composite
// slot + day*slotsPerDay, with day 366 folded onto day 1. It applies no
// distance filter inside a cell.
type GridBucketIndex struct {
	dim     Dimension
	opts    GridOptions
	buckets map[gridKey][]models.RecordID
	size    int
}

// NewGridBucketIndex bulk-builds the bucket map
func NewGridBucketIndex(records []models.AccidentRecord, dim Dimension, opts GridOptions) (*GridBucketIndex, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	x := &GridBucketIndex{
		dim:     dim,
		opts:    opts,
		buckets: make(map[gridKey][]models.RecordID),
		size:    len(records),
	}
	for _, rec := range records {
		key := gridKey{
			cell:   CellAt(rec.Latitude, rec.Longitude, opts.Level),
			bucket: x.bucket(rec.HourOfDay, rec.DayOfYear),
		}
		x.buckets[key] = append(x.buckets[key], rec.ID)
	}
	return x, nil
}

// CellAt returns the S2 cell containing the point at level
func CellAt(lat, lon float64, level int) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(level)
}

// RingCells returns center and every cell within radius neighbor hops,
// in breadth-first order. Neighbors include diagonal (vertex) neighbors.
func RingCells(center s2.CellID, radius int) []s2.CellID {
	level := center.Level()
	seen := map[s2.CellID]bool{center: true}
	out := []s2.CellID{center}
	frontier := []s2.CellID{center}
	for hop := 0; hop < radius && len(frontier) > 0; hop++ {
		var next []s2.CellID
		for _, c := range frontier {
			for _, n := range c.AllNeighbors(level) {
				if seen[n] {
					continue
				}
				seen[n] = true
				out = append(out, n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return out
}

func (x *GridBucketIndex) slotsPerDay() int {
	return HoursPerDay / x.opts.BucketWidth
}

// bucket computes floor(hour/width) on HourOfDay and
// floor(hour/width) + day*(24/width) on DayOfYear
func (x *GridBucketIndex) bucket(hour, day int) int {
	slot := hour / x.opts.BucketWidth
	if x.dim == DayOfYear {
		return slot + foldDay(day)*x.slotsPerDay()
	}
	return slot
}

// foldDay maps day 366 onto day 1 so every year has the same 365-day cycle
func foldDay(day int) int {
	return mod(day-1, DaysPerYear) + 1
}

// queryBuckets returns the query bucket and its spread neighbors, wrapping
// around the day (hour slots) or the 365-day year (composite buckets)
func (x *GridBucketIndex) queryBuckets(at time.Time) []int {
	b := x.bucket(at.Hour(), at.YearDay())
	if x.opts.BucketSpread == 0 {
		return []int{b}
	}

	spd := x.slotsPerDay()
	lo, cycle := 0, spd
	if x.dim == DayOfYear {
		lo, cycle = spd, DaysPerYear*spd // days 1..365
	}

	seen := make(map[int]bool)
	var out []int
	for k := -x.opts.BucketSpread; k <= x.opts.BucketSpread; k++ {
		nb := lo + mod(b+k-lo, cycle)
		if !seen[nb] {
			seen[nb] = true
			out = append(out, nb)
		}
	}
	return out
}

// Query unions the buckets of every ring cell around the point
func (x *GridBucketIndex) Query(lat, lon float64, at time.Time) []models.RecordID {
	cells := RingCells(CellAt(lat, lon, x.opts.Level), x.opts.RingRadius)
	buckets := x.queryBuckets(at)

	var ids []models.RecordID
	for _, c := range cells {
		for _, b := range buckets {
			ids = append(ids, x.buckets[gridKey{cell: c, bucket: b}]...)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Options returns the grid options
func (x *GridBucketIndex) Options() GridOptions { return x.opts }

func (x *GridBucketIndex) Dimension() Dimension { return x.dim }
func (x *GridBucketIndex) Design() Design       { return DesignGrid }
func (x *GridBucketIndex) Len() int             { return x.size }
