package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Belgrade to Novi Sad is roughly 72 km
	d := HaversineDistance(44.8125, 20.4612, 45.2671, 19.8335)
	assert.InDelta(t, 72000, d, 2000)
	assert.Equal(t, d, Distance(Point{44.8125, 20.4612}, Point{45.2671, 19.8335}))
	assert.Zero(t, HaversineDistance(44, 20, 44, 20))
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	assert.InDelta(t, 0, Bearing(origin, Point{Lat: 1, Lon: 0}), 1e-9)
	assert.InDelta(t, 90, Bearing(origin, Point{Lat: 0, Lon: 1}), 1e-9)
	assert.InDelta(t, 180, Bearing(origin, Point{Lat: -1, Lon: 0}), 1e-9)
	assert.InDelta(t, 270, Bearing(origin, Point{Lat: 0, Lon: -1}), 1e-9)
}

func TestInterpolate(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 10}

	assert.Equal(t, a, Interpolate(-1, a, b))
	assert.Equal(t, b, Interpolate(2, a, b))

	mid := Interpolate(0.5, a, b)
	assert.InDelta(t, 0, mid.Lat, 1e-9)
	assert.InDelta(t, 5, mid.Lon, 1e-9)
}

func TestPathLength(t *testing.T) {
	path := []Point{{0, 0}, {0, 1}, {0, 2}}
	cum := CumulativeDistances(path)
	assert.Len(t, cum, 3)
	assert.Zero(t, cum[0])
	assert.InDelta(t, cum[1]*2, cum[2], 1e-6)
	assert.Equal(t, cum[2], PathLength(path))

	assert.Zero(t, PathLength(path[:1]))
	assert.Zero(t, PathLength(nil))
}
