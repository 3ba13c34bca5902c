package model

import "time"

// UrgencyLevel classifies how close a deadline is.
type UrgencyLevel string

const (
	UrgencyExpired UrgencyLevel = "expired"
	UrgencyUrgent  UrgencyLevel = "urgent"
	UrgencyWarning UrgencyLevel = "warning"
	UrgencyOpen    UrgencyLevel = "open"
	UrgencyFuture  UrgencyLevel = "future"
)

// Rank orders urgency levels, higher is more urgent.
func (l UrgencyLevel) Rank() int {
	switch l {
	case UrgencyExpired:
		return 4
	case UrgencyUrgent:
		return 3
	case UrgencyWarning:
		return 2
	case UrgencyOpen:
		return 1
	default:
		return 0
	}
}

// DeadlineStatus is the evaluated state of a single deadline at a point in time.
type DeadlineStatus struct {
	IsOpen        bool         `json:"isOpen"`
	IsExpired     bool         `json:"isExpired"`
	DaysRemaining int          `json:"daysRemaining"`
	UrgencyLevel  UrgencyLevel `json:"urgencyLevel"`
	Message       string       `json:"message"`
}

// WindowStatus describes an institution's acceptance period.
type WindowStatus string

const (
	WindowOpen     WindowStatus = "open"
	WindowClosed   WindowStatus = "closed"
	WindowUpcoming WindowStatus = "upcoming"
	WindowExpired  WindowStatus = "expired"
)

// ApplicationWindow is derived from an explicit deadline or the academic calendar.
type ApplicationWindow struct {
	IsCurrentlyOpen bool         `json:"isCurrentlyOpen"`
	OpensAt         *time.Time   `json:"opensAt,omitempty"`
	ClosesAt        *time.Time   `json:"closesAt,omitempty"`
	NextOpeningDate *time.Time   `json:"nextOpeningDate,omitempty"`
	NextClosingDate *time.Time   `json:"nextClosingDate,omitempty"`
	Status          WindowStatus `json:"status"`
}

// SweepResult reports how many listings each collection deactivated.
type SweepResult struct {
	InstitutionsUpdated int64 `json:"institutionsUpdated"`
	ProgramsUpdated     int64 `json:"programsUpdated"`
	BursariesUpdated    int64 `json:"bursariesUpdated"`
}

// DeadlineSummary aggregates listing counts computed directly in the store.
type DeadlineSummary struct {
	OpenInstitutions   int64 `json:"openInstitutions"`
	ClosedInstitutions int64 `json:"closedInstitutions"`
	OpenPrograms       int64 `json:"openPrograms"`
	ClosedPrograms     int64 `json:"closedPrograms"`
	ActiveBursaries    int64 `json:"activeBursaries"`
	ExpiredBursaries   int64 `json:"expiredBursaries"`
	UpcomingDeadlines  int64 `json:"upcomingDeadlines"`
}
