// Package index holds the read-only spatial and temporal indexes queried by the engine.
// Every index is bulk-built once and never mutated afterwards, so concurrent
// queries need no locking.
package index

import (
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// R-tree node fan-out
const (
	minChildren = 25
	maxChildren = 50
)

// BBox is an axis-aligned box in (longitude, latitude) degrees
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// BoxAround returns the square box of the given half-width centered on a point
func BoxAround(lat, lon, halfWidth float64) BBox {
	return BBox{
		MinLon: lon - halfWidth,
		MinLat: lat - halfWidth,
		MaxLon: lon + halfWidth,
		MaxLat: lat + halfWidth,
	}
}

func (b BBox) rect() (rtreego.Rect, error) {
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.MinLon, b.MinLat},
		rtreego.Point{b.MaxLon, b.MaxLat},
	)
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("invalid box %+v: %w", b, err)
	}
	return r, nil
}

// SpatialIndex answers window-intersection queries over record boxes
type SpatialIndex interface {
	// Query returns the IDs, in ascending order, of every record whose box intersects box
	Query(box BBox) []models.RecordID
	Len() int
}

// spatialEntry maps a record's box to its ID
type spatialEntry struct {
	id   models.RecordID
	rect rtreego.Rect
}

func (e *spatialEntry) Bounds() rtreego.Rect {
	return e.rect
}

// RTree is a SpatialIndex backed by a bulk-loaded R-tree.
// Each record is stored as a point box padded by epsilon degrees.
type RTree struct {
	tree    *rtreego.Rtree
	epsilon float64
}

// NewRTree bulk-loads the records. epsilon must be positive: boxes that only
// touch do not intersect, so a zero-size record box could never be matched by
// a zero-size query box.
func NewRTree(records []models.AccidentRecord, epsilon float64) (*RTree, error) {
	if epsilon <= 0 {
		return nil, fmt.Errorf("box epsilon must be positive, got %v", epsilon)
	}
	objs := make([]rtreego.Spatial, 0, len(records))
	for _, rec := range records {
		r, err := BoxAround(rec.Latitude, rec.Longitude, epsilon).rect()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		objs = append(objs, &spatialEntry{id: rec.ID, rect: r})
	}
	return &RTree{
		tree:    rtreego.NewTree(2, minChildren, maxChildren, objs...),
		epsilon: epsilon,
	}, nil
}

// Query returns the IDs of records whose box intersects box
func (t *RTree) Query(box BBox) []models.RecordID {
	r, err := box.rect()
	if err != nil {
		return nil
	}
	hits := t.tree.SearchIntersect(r)
	ids := make([]models.RecordID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*spatialEntry).id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of indexed records
func (t *RTree) Len() int {
	return t.tree.Size()
}

// Epsilon returns the record box half-width
func (t *RTree) Epsilon() float64 {
	return t.epsilon
}
