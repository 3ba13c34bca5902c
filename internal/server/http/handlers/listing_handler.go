package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/server/http/dto"
)

const maxUpcomingDays = 365

// ListingHandler serves public listing endpoints.
type ListingHandler struct {
	listings  ListingFacade
	deadlines DeadlineFacade
}

func NewListingHandler(listings ListingFacade, deadlines DeadlineFacade) *ListingHandler {
	return &ListingHandler{listings: listings, deadlines: deadlines}
}

// Institutions handles GET /api/listings/institutions.
func (h *ListingHandler) Institutions(c *gin.Context) {
	items, err := h.listings.OpenInstitutions(c.Request.Context())
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load institutions")
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// Programs handles GET /api/listings/programs.
func (h *ListingHandler) Programs(c *gin.Context) {
	items, err := h.listings.OpenPrograms(c.Request.Context())
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load programs")
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// Bursaries handles GET /api/listings/bursaries.
func (h *ListingHandler) Bursaries(c *gin.Context) {
	items, err := h.listings.ActiveBursaries(c.Request.Context())
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load bursaries")
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// Upcoming handles GET /api/listings/upcoming?days=.
func (h *ListingHandler) Upcoming(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxUpcomingDays {
			abortError(c, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	items, err := h.listings.UpcomingDeadlines(c.Request.Context(), days)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load upcoming deadlines")
		return
	}

	response := make([]dto.UpcomingDeadline, 0, len(items))
	for _, item := range items {
		deadline := item.Deadline()
		if deadline == nil {
			continue
		}
		response = append(response, dto.UpcomingDeadline{
			Kind:     item.Kind(),
			ID:       item.ListingID(),
			Name:     listingName(item),
			Deadline: *deadline,
			Status:   h.deadlines.DeadlineStatus(*deadline),
		})
	}
	c.JSON(http.StatusOK, response)
}

func listingName(item model.Listing) string {
	switch v := item.(type) {
	case model.Institution:
		return v.Name
	case model.Program:
		return v.Name
	case model.Bursary:
		return v.Title
	default:
		return ""
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
