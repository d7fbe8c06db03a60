package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// MaintenanceHandler exposes read-only consistency checks.
type MaintenanceHandler struct {
	audit *service.CounterAuditService
}

// NewMaintenanceHandler constructs a maintenance handler.
func NewMaintenanceHandler(audit *service.CounterAuditService) *MaintenanceHandler {
	return &MaintenanceHandler{audit: audit}
}

// Counters godoc
// @Summary Audit derived hour counters
// @Description Recomputes base hours plus scheduled slots for every subject and allocation and lists the rows that differ.
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /maintenance/counters [get]
func (h *MaintenanceHandler) Counters(c *gin.Context) {
	drift, err := h.audit.Verify(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drift, map[string]interface{}{
		"consistent": len(drift) == 0,
		"drifted":    len(drift),
	})
}
