package simulator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/accident-risk-go/internal/engine"
)

// AssessFunc scores a position; a zero at means now
type AssessFunc func(lat, lon float64, at time.Time) (engine.Result, error)

// Options controls a simulation run
type Options struct {
	SpeedKmh   float64       `yaml:"speed_kmh"`
	Interval   time.Duration `yaml:"interval"`    // simulated time per step
	QueryEvery int           `yaml:"query_every"` // query on every Nth step
	Tick       time.Duration `yaml:"tick"`        // wall-clock pause between steps, 0 runs flat out
	Start      time.Time     `yaml:"start"`       // simulated clock origin, zero queries at wall-clock now
	MaxSteps   int           `yaml:"max_steps"`   // 0 means until the route ends
}

// DefaultOptions returns 300 km/h, one minute per step, a query every 5 steps
func DefaultOptions() Options {
	return Options{
		SpeedKmh:   300,
		Interval:   time.Minute,
		QueryEvery: 5,
	}
}

// Report is one risk check along the route
type Report struct {
	Progress Progress      `json:"progress"`
	At       time.Time     `json:"at"`
	Result   engine.Result `json:"result"`
}

// Summary is the outcome of a whole run
type Summary struct {
	Steps   int      `json:"steps"`
	Reports []Report `json:"reports"`
	Arrived bool     `json:"arrived"`
}

// Run drives v until it arrives, MaxSteps is reached or ctx is cancelled,
// assessing the position every QueryEvery steps and once more on arrival.
// onReport, when set, sees each report as it is produced.
func Run(ctx context.Context, v *Vehicle, opts Options, assess AssessFunc, onReport func(Report)) (Summary, error) {
	if opts.QueryEvery <= 0 {
		return Summary{}, fmt.Errorf("query interval must be positive, got %d", opts.QueryEvery)
	}

	var tick <-chan time.Time
	if opts.Tick > 0 {
		t := time.NewTicker(opts.Tick)
		defer t.Stop()
		tick = t.C
	}

	var sum Summary
	lastReported := -1
	for !v.Finished() && (opts.MaxSteps <= 0 || sum.Steps < opts.MaxSteps) {
		if tick != nil {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return sum, err
		}

		v.Move()
		sum.Steps++
		if sum.Steps%opts.QueryEvery != 0 && !v.Finished() {
			continue
		}

		rep, err := assessAt(v, opts, assess)
		if err != nil {
			return sum, err
		}
		lastReported = sum.Steps
		sum.Reports = append(sum.Reports, rep)
		if onReport != nil {
			onReport(rep)
		}
	}

	sum.Arrived = v.Finished()
	if sum.Arrived && lastReported != sum.Steps {
		// vehicle was already parked at the end
		rep, err := assessAt(v, opts, assess)
		if err != nil {
			return sum, err
		}
		sum.Reports = append(sum.Reports, rep)
		if onReport != nil {
			onReport(rep)
		}
	}
	log.Printf("[Simulator] Run finished: %d steps, %d checks, arrived=%t", sum.Steps, len(sum.Reports), sum.Arrived)
	return sum, nil
}

func assessAt(v *Vehicle, opts Options, assess AssessFunc) (Report, error) {
	p := v.Progress()
	var at time.Time
	if !opts.Start.IsZero() {
		at = opts.Start.Add(p.Elapsed)
	}
	res, err := assess(p.Position.Lat, p.Position.Lon, at)
	if err != nil {
		return Report{}, fmt.Errorf("failed to assess step %d: %w", p.Step, err)
	}
	return Report{Progress: p, At: res.At, Result: res}, nil
}
