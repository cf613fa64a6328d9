package index

import (
	"fmt"
	"time"

	"github.com/jengzang/accident-risk-go/internal/models"
)

// Dimension is a recurring time axis
type Dimension int

const (
	HourOfDay Dimension = iota
	DayOfYear
)

// Cycle lengths used for wrap-around. Day 366 folds onto day 1.
const (
	HoursPerDay = 24
	DaysPerYear = 365
)

func (d Dimension) String() string {
	switch d {
	case HourOfDay:
		return "hour_of_day"
	case DayOfYear:
		return "day_of_year"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// Period returns the cycle length of the dimension
func (d Dimension) Period() int {
	if d == DayOfYear {
		return DaysPerYear
	}
	return HoursPerDay
}

// Of returns the record's value on this dimension
func (d Dimension) Of(rec models.AccidentRecord) int {
	if d == DayOfYear {
		return rec.DayOfYear
	}
	return rec.HourOfDay
}

// At returns the value of t on this dimension in t's location
func (d Dimension) At(t time.Time) int {
	if d == DayOfYear {
		return t.YearDay()
	}
	return t.Hour()
}

// Window is a closed recurrence interval [Lo, Hi] stored unwrapped:
// Lo may be negative and Hi may exceed the period.
type Window struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// NewWindow returns [center-halfWidth, center+halfWidth]
func NewWindow(center, halfWidth int) Window {
	return Window{Lo: center - halfWidth, Hi: center + halfWidth}
}

// Contains reports whether v falls inside the window modulo period.
// A window spanning a whole cycle contains everything.
func (w Window) Contains(v, period int) bool {
	span := w.Hi - w.Lo
	if span < 0 {
		return false
	}
	if span >= period-1 {
		return true
	}
	return mod(v-w.Lo, period) <= span
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
