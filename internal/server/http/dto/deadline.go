package dto

import (
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// ActionMarkExpired triggers the expiry sweep.
const ActionMarkExpired = "mark_expired"

// DeadlineActionRequest is the admin trigger payload.
type DeadlineActionRequest struct {
	Action string `json:"action" validate:"required,oneof=mark_expired"`
}

type DeadlineSummaryResponse struct {
	Success bool                  `json:"success"`
	Data    model.DeadlineSummary `json:"data"`
}

type SweepResponse struct {
	Success bool              `json:"success"`
	Result  model.SweepResult `json:"result"`
}

// UpcomingDeadline is one entry of the upcoming deadlines listing.
type UpcomingDeadline struct {
	Kind     model.ListingKind    `json:"kind"`
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Deadline time.Time            `json:"deadline"`
	Status   model.DeadlineStatus `json:"status"`
}
