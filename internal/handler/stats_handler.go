package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/service"
)

type StatsReader interface {
	Stats(ctx context.Context, donationType string) (*service.StatsResult, error)
}

// StatsHandler serves the aggregate for one donation type.
type StatsHandler struct {
	stats        StatsReader
	donationType string
}

func NewStatsHandler(stats StatsReader, donationType string) *StatsHandler {
	return &StatsHandler{stats: stats, donationType: donationType}
}

func (h *StatsHandler) Get(c *gin.Context) {
	res, err := h.stats.Stats(c.Request.Context(), h.donationType)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"stats":           res.Stats,
		"recentDonations": res.RecentDonations,
	})
}
