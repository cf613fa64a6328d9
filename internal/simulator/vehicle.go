package simulator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jengzang/accident-risk-go/internal/spatial"
)

// ErrInvalidRoute is returned for routes a vehicle cannot drive
var ErrInvalidRoute = errors.New("invalid route")

// Progress describes how far a vehicle is along its route
type Progress struct {
	Step     int           `json:"step"`
	Position spatial.Point `json:"position"`
	Heading  float64       `json:"heading"`
	Traveled float64       `json:"traveled_m"`
	Total    float64       `json:"total_m"`
	Percent  float64       `json:"percent"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Vehicle advances along a fixed polyline at constant speed.
// Each Move covers speed × interval of simulated time. Not safe for concurrent use.
type Vehicle struct {
	route    []spatial.Point
	cum      []float64
	stepLen  float64
	interval time.Duration

	steps    int
	traveled float64
	pos      spatial.Point
	heading  float64
}

// NewVehicle places a vehicle at the first point of route
func NewVehicle(route []spatial.Point, speedKmh float64, interval time.Duration) (*Vehicle, error) {
	if len(route) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidRoute, len(route))
	}
	if speedKmh <= 0 || interval <= 0 {
		return nil, fmt.Errorf("%w: speed %.1f km/h and interval %v must be positive", ErrInvalidRoute, speedKmh, interval)
	}

	v := &Vehicle{
		route:    route,
		cum:      spatial.CumulativeDistances(route),
		stepLen:  speedKmh * 1000 / 3600 * interval.Seconds(),
		interval: interval,
		pos:      route[0],
	}
	v.heading = spatial.Bearing(route[0], route[1])
	return v, nil
}

// StepLength returns the distance in meters covered per Move
func (v *Vehicle) StepLength() float64 {
	return v.stepLen
}

// Total returns the route length in meters
func (v *Vehicle) Total() float64 {
	return v.cum[len(v.cum)-1]
}

// Move advances one step and returns the new position. At the end of the
// route the vehicle stays on the last point.
func (v *Vehicle) Move() spatial.Point {
	if v.Finished() {
		return v.pos
	}
	v.steps++
	v.traveled = min(v.traveled+v.stepLen, v.Total())
	v.pos, v.heading = v.locate(v.traveled)
	return v.pos
}

// locate finds the position and heading at distance d along the route
func (v *Vehicle) locate(d float64) (spatial.Point, float64) {
	last := len(v.route) - 1
	if d >= v.Total() {
		return v.route[last], spatial.Bearing(v.route[last-1], v.route[last])
	}
	// first vertex strictly beyond d
	i := sort.Search(len(v.cum), func(i int) bool { return v.cum[i] > d })
	a, b := v.route[i-1], v.route[i]
	seg := v.cum[i] - v.cum[i-1]
	if seg == 0 {
		return a, v.heading
	}
	return spatial.Interpolate((d-v.cum[i-1])/seg, a, b), spatial.Bearing(a, b)
}

// Position returns the current position
func (v *Vehicle) Position() spatial.Point {
	return v.pos
}

// Finished reports whether the vehicle reached the end of the route
func (v *Vehicle) Finished() bool {
	return v.traveled >= v.Total()
}

// Progress returns the current progress snapshot
func (v *Vehicle) Progress() Progress {
	p := Progress{
		Step:     v.steps,
		Position: v.pos,
		Heading:  v.heading,
		Traveled: v.traveled,
		Total:    v.Total(),
		Percent:  100,
		Elapsed:  time.Duration(v.steps) * v.interval,
	}
	if p.Total > 0 {
		p.Percent = v.traveled / p.Total * 100
	}
	return p
}
