package handler

import (
	"context"
	"net/http"

	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/query"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/gin-gonic/gin"
)

type StatsQuerier interface {
	Summary(ctx context.Context) (*query.Summary, error)
}

type StatsHandler struct {
	queries StatsQuerier
}

func NewStatsHandler(queries StatsQuerier) *StatsHandler {
	return &StatsHandler{queries: queries}
}

func (h *StatsHandler) GetSummary(c *gin.Context) {
	summary, err := h.queries.Summary(c.Request.Context())
	if err != nil {
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Analytics store unavailable")
		return
	}
	c.JSON(http.StatusOK, summary)
}
