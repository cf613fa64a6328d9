package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accident-risk-go/internal/engine"
	"github.com/jengzang/accident-risk-go/internal/models"
	"github.com/jengzang/accident-risk-go/internal/service"
	"github.com/jengzang/accident-risk-go/pkg/response"
)

// RiskHandler handles HTTP requests for risk assessment and record lookup
type RiskHandler struct {
	riskService *service.RiskService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(riskService *service.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// PointQuery is the query string of the point endpoints
type PointQuery struct {
	Lat  *float64 `form:"lat" binding:"required"`
	Lon  *float64 `form:"lon" binding:"required"`
	Time string   `form:"time"` // RFC3339, empty means now
}

func (q PointQuery) at() (time.Time, error) {
	if q.Time == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, q.Time)
}

// GetRisk handles GET /api/v1/risk
func (h *RiskHandler) GetRisk(c *gin.Context) {
	var q PointQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "lat and lon are required numeric parameters")
		return
	}
	at, err := q.at()
	if err != nil {
		response.BadRequest(c, "time must be RFC3339")
		return
	}

	result, err := h.riskService.Assess(*q.Lat, *q.Lon, at)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

// GetNearby handles GET /api/v1/records/nearby
func (h *RiskHandler) GetNearby(c *gin.Context) {
	var q PointQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "lat and lon are required numeric parameters")
		return
	}

	recs, err := h.riskService.Nearby(*q.Lat, *q.Lon)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(recs), "records": recs})
}

// GetRecordByID handles GET /api/v1/records/:id
func (h *RiskHandler) GetRecordByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		response.BadRequest(c, "Invalid record ID")
		return
	}

	rec, err := h.riskService.GetRecord(models.RecordID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	if rec == nil {
		response.NotFound(c, "Record not found")
		return
	}
	response.Success(c, rec)
}

// GetSummary handles GET /api/v1/records/summary
func (h *RiskHandler) GetSummary(c *gin.Context) {
	stats, err := h.riskService.Summary()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *RiskHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidQueryPoint):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrEngineUnavailable):
		response.ServiceUnavailable(c, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}
