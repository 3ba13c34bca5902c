package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/apply4me/internal/pkg/validation"
	"github.com/polkiloo/apply4me/internal/server/http/dto"
)

// DeadlineHandler serves the admin sweep endpoints and deadline status lookups.
type DeadlineHandler struct {
	facade    DeadlineFacade
	validator *validation.Validator
}

func NewDeadlineHandler(facade DeadlineFacade, validator *validation.Validator) *DeadlineHandler {
	return &DeadlineHandler{facade: facade, validator: validator}
}

// Summary handles GET /api/admin/deadlines.
func (h *DeadlineHandler) Summary(c *gin.Context) {
	summary, err := h.facade.DeadlineSummary(c.Request.Context())
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load deadline status")
		return
	}
	c.JSON(http.StatusOK, dto.DeadlineSummaryResponse{Success: true, Data: *summary})
}

// Trigger handles POST /api/admin/deadlines.
func (h *DeadlineHandler) Trigger(c *gin.Context) {
	var req dto.DeadlineActionRequest
	if !bindJSON(c, h.validator, &req, "Invalid action") {
		return
	}

	result := h.facade.MarkExpiredItemsInactive(c.Request.Context())
	c.JSON(http.StatusOK, dto.SweepResponse{Success: true, Result: result})
}

// Status handles GET /api/deadlines/status?deadline=<RFC 3339>.
func (h *DeadlineHandler) Status(c *gin.Context) {
	raw := c.Query("deadline")
	if raw == "" {
		abortError(c, http.StatusBadRequest, "deadline is required")
		return
	}
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		abortError(c, http.StatusBadRequest, "deadline must be an RFC 3339 timestamp")
		return
	}
	c.JSON(http.StatusOK, h.facade.DeadlineStatus(deadline))
}
