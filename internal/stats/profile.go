package stats

import (
	"github.com/jengzang/accident-risk-go/internal/index"
	"github.com/jengzang/accident-risk-go/internal/models"
)

// Extent is the bounding box of all record locations
type Extent struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Profile summarizes when and where the loaded accidents happened
type Profile struct {
	HourCounts        []int          `json:"hour_counts"`
	PeakHour          int            `json:"peak_hour"`
	MeanHour          float64        `json:"mean_hour"`
	HourConcentration float64        `json:"hour_concentration"`
	HourEntropy       float64        `json:"hour_entropy"`
	MeanDay           float64        `json:"mean_day_of_year"`
	DayConcentration  float64        `json:"day_concentration"`
	Categories        map[string]int `json:"categories"`
	Extent            *Extent        `json:"extent,omitempty"`
}

// NewProfile builds the profile of recs. Day 366 is counted with day 1,
// matching the season window's 365-day cycle.
func NewProfile(recs []models.AccidentRecord) Profile {
	hours := make([]int, index.HoursPerDay)
	days := make([]int, index.DaysPerYear)
	p := Profile{Categories: make(map[string]int)}

	for i, rec := range recs {
		hours[rec.HourOfDay]++
		days[(rec.DayOfYear-1)%index.DaysPerYear]++
		p.Categories[rec.Category]++

		if i == 0 {
			p.Extent = &Extent{MinLat: rec.Latitude, MinLon: rec.Longitude, MaxLat: rec.Latitude, MaxLon: rec.Longitude}
			continue
		}
		p.Extent.MinLat = min(p.Extent.MinLat, rec.Latitude)
		p.Extent.MinLon = min(p.Extent.MinLon, rec.Longitude)
		p.Extent.MaxLat = max(p.Extent.MaxLat, rec.Latitude)
		p.Extent.MaxLon = max(p.Extent.MaxLon, rec.Longitude)
	}

	p.HourCounts = hours
	for h, c := range hours {
		if c > hours[p.PeakHour] {
			p.PeakHour = h
		}
	}
	p.MeanHour, p.HourConcentration = CyclicMean(hours, 0)
	p.HourEntropy = NormalizedEntropy(hours)
	p.MeanDay, p.DayConcentration = CyclicMean(days, 1)
	return p
}
