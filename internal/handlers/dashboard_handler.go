package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/httpresp"
	ucStats "github.com/kassemshdy/aspire-library/internal/usecase/stats"
)

type DashboardHandler struct {
	stats *ucStats.Dashboard
}

func NewDashboardHandler(stats *ucStats.Dashboard) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, stats)
}
