package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/accident-risk-go/internal/engine"
	"github.com/jengzang/accident-risk-go/internal/metrics"
	"github.com/jengzang/accident-risk-go/internal/models"
)

// ErrEngineUnavailable is returned before the first successful build
var ErrEngineUnavailable = errors.New("risk engine not loaded")

// Builder loads records and builds a fresh engine
type Builder func(ctx context.Context) (*engine.Engine, error)

// RiskService serves queries from the active engine. A reload builds a new
// engine and swaps it in; built engines are never modified.
type RiskService struct {
	build    Builder
	current  atomic.Pointer[engine.Engine]
	reloadMu sync.Mutex
}

// NewRiskService creates a service and performs the initial build
func NewRiskService(ctx context.Context, build Builder) (*RiskService, error) {
	s := &RiskService{build: build}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewRiskServiceWithEngine wraps an already built engine
func NewRiskServiceWithEngine(e *engine.Engine, build Builder) *RiskService {
	s := &RiskService{build: build}
	s.swap(e)
	return s
}

// Reload rebuilds the engine. On failure the previous engine stays active.
func (s *RiskService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.build == nil {
		return fmt.Errorf("reload: no builder configured")
	}
	e, err := s.build(ctx)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to build engine: %w", err)
	}
	s.swap(e)
	metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *RiskService) swap(e *engine.Engine) {
	s.current.Store(e)
	st := e.Stats()
	metrics.RecordsLoaded.Set(float64(st.Records))
	metrics.RowsSkipped.Set(float64(st.Summary.Skipped))
	metrics.BuildDurationMs.Set(float64(st.BuildDuration) / float64(time.Millisecond))
	log.Printf("[RiskService] Active engine: %d records, design=%s", st.Records, st.Design)
}

// Engine returns the active engine
func (s *RiskService) Engine() (*engine.Engine, error) {
	e := s.current.Load()
	if e == nil {
		return nil, ErrEngineUnavailable
	}
	return e, nil
}

// Assess scores a point; a zero at means now
func (s *RiskService) Assess(lat, lon float64, at time.Time) (engine.Result, error) {
	e, err := s.Engine()
	if err != nil {
		return engine.Result{}, err
	}

	start := time.Now()
	res, err := e.Query(lat, lon, at)
	if err != nil {
		metrics.QueryErrorsTotal.Inc()
		return engine.Result{}, err
	}
	metrics.QueryDurationMs.Observe(float64(time.Since(start)) / float64(time.Millisecond))
	metrics.QueriesTotal.WithLabelValues(res.Level.String()).Inc()
	return res, nil
}

// Nearby lists the records inside the search box
func (s *RiskService) Nearby(lat, lon float64) ([]models.AccidentRecord, error) {
	e, err := s.Engine()
	if err != nil {
		return nil, err
	}
	return e.Nearby(lat, lon)
}

// GetRecord retrieves a single record by ID
func (s *RiskService) GetRecord(id models.RecordID) (*models.AccidentRecord, error) {
	e, err := s.Engine()
	if err != nil {
		return nil, err
	}
	rec, ok := e.Record(id)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Summary reports the active engine's load summary and index sizes
func (s *RiskService) Summary() (engine.Stats, error) {
	e, err := s.Engine()
	if err != nil {
		return engine.Stats{}, err
	}
	return e.Stats(), nil
}
