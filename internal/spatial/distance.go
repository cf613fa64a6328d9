package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Earth's mean radius
const (
	EarthRadiusMeters = 6371000.0
	EarthRadiusKm     = 6371.0
)

// Point is a WGS84 position in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance is HaversineDistance between two points
func Distance(a, b Point) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusMeters
}

// Bearing calculates the initial bearing from a to b.
// Returns degrees (0-360), where 0 is North, 90 is East.
func Bearing(a, b Point) float64 {
	p1, p2 := a.latLng(), b.latLng()
	lat1 := p1.Lat.Radians()
	lat2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Interpolate returns the point at fraction t (0..1) along the great circle from a to b
func Interpolate(t float64, a, b Point) Point {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	p := s2.Interpolate(t, s2.PointFromLatLng(a.latLng()), s2.PointFromLatLng(b.latLng()))
	ll := s2.LatLngFromPoint(p)
	return Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}

// CumulativeDistances returns, for each vertex of a path, the distance in meters
// travelled from the first vertex
func CumulativeDistances(path []Point) []float64 {
	out := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		out[i] = out[i-1] + Distance(path[i-1], path[i])
	}
	return out
}

// PathLength calculates the total length of a path in meters
func PathLength(path []Point) float64 {
	if len(path) < 2 {
		return 0
	}
	cum := CumulativeDistances(path)
	return cum[len(cum)-1]
}
