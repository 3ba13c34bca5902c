package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/apply4me/internal/pkg/validation"
	"github.com/polkiloo/apply4me/internal/server/http/dto"
)

// NotificationHandler serves a user's own notifications.
type NotificationHandler struct {
	facade    NotificationFacade
	validator *validation.Validator
}

func NewNotificationHandler(facade NotificationFacade, validator *validation.Validator) *NotificationHandler {
	return &NotificationHandler{facade: facade, validator: validator}
}

// List handles GET /api/notifications?userId=&unreadOnly=&limit=.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = CurrentUserID(c)
	}
	if userID != CurrentUserID(c) {
		abortError(c, http.StatusForbidden, "Forbidden")
		return
	}

	unreadOnly := false
	if raw := c.Query("unreadOnly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			abortError(c, http.StatusBadRequest, "unreadOnly must be a boolean")
			return
		}
		unreadOnly = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.facade.Notifications(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	c.JSON(http.StatusOK, dto.NotificationsResponse{Success: true, Notifications: nonNil(items)})
}

// MarkRead handles PATCH /api/notifications.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if !bindJSON(c, h.validator, &req, "Invalid request") {
		return
	}
	if req.UserID != CurrentUserID(c) {
		abortError(c, http.StatusForbidden, "Forbidden")
		return
	}

	updated, err := h.facade.MarkNotificationsRead(c.Request.Context(), req.UserID, req.NotificationIDs)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, dto.MarkReadResponse{Success: true, Updated: updated})
}
