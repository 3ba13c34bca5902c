package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/polkiloo/apply4me/internal/domain/model"
	"github.com/polkiloo/apply4me/internal/pkg/clock"
)

const (
	day                      = 24 * time.Hour
	defaultUpcomingDaysAhead = 30
)

// DeadlineEvaluator turns deadlines into statuses and filters listings by them.
type DeadlineEvaluator struct {
	clock    clock.Clock
	calendar *CalendarPolicy
}

// NewDeadlineEvaluator constructs DeadlineEvaluator. A nil calendar uses the default intake window in UTC.
func NewDeadlineEvaluator(c clock.Clock, calendar *CalendarPolicy) *DeadlineEvaluator {
	if calendar == nil {
		calendar = NewCalendarPolicy(time.UTC)
	}
	return &DeadlineEvaluator{clock: c, calendar: calendar}
}

// Now returns the evaluator's current time.
func (e *DeadlineEvaluator) Now() time.Time {
	return e.clock.Now()
}

// CheckDeadlineStatus evaluates deadline against the current time.
func (e *DeadlineEvaluator) CheckDeadlineStatus(deadline time.Time) model.DeadlineStatus {
	return EvaluateDeadline(e.clock.Now(), deadline)
}

// EvaluateDeadline is the pure form of CheckDeadlineStatus.
func EvaluateDeadline(now, deadline time.Time) model.DeadlineStatus {
	if deadline.Before(now) {
		passed := int(now.Sub(deadline) / day)
		return model.DeadlineStatus{
			IsOpen:        false,
			IsExpired:     true,
			DaysRemaining: 0,
			UrgencyLevel:  model.UrgencyExpired,
			Message:       passedMessage(passed),
		}
	}

	days := daysUntil(now, deadline)
	status := model.DeadlineStatus{IsOpen: true, DaysRemaining: days}

	switch {
	case days == 0:
		status.UrgencyLevel = model.UrgencyUrgent
		status.Message = "Deadline is TODAY!"
	case days <= 3:
		status.UrgencyLevel = model.UrgencyUrgent
		status.Message = fmt.Sprintf("Only %s left!", pluralDays(days))
	case days <= 14:
		status.UrgencyLevel = model.UrgencyWarning
		status.Message = fmt.Sprintf("%s left", pluralDays(days))
	case days <= 60:
		status.UrgencyLevel = model.UrgencyOpen
		status.Message = fmt.Sprintf("%s remaining", pluralDays(days))
	default:
		status.UrgencyLevel = model.UrgencyFuture
		status.Message = fmt.Sprintf("Opens in %s", pluralDays(days))
	}
	return status
}

// daysUntil rounds the remaining duration up to whole days. deadline must not be before now.
func daysUntil(now, deadline time.Time) int {
	diff := deadline.Sub(now)
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}

func passedMessage(days int) string {
	if days == 0 {
		return "Deadline passed today"
	}
	return fmt.Sprintf("Deadline passed %s ago", pluralDays(days))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// DetermineApplicationWindow derives the window for an institution from its deadline
// or, when there is none, from the academic calendar.
func (e *DeadlineEvaluator) DetermineApplicationWindow(institution string, deadline *time.Time) model.ApplicationWindow {
	now := e.clock.Now()

	if deadline != nil {
		status := EvaluateDeadline(now, *deadline)
		closes := *deadline
		window := model.ApplicationWindow{
			IsCurrentlyOpen: !status.IsExpired,
			ClosesAt:        &closes,
			Status:          model.WindowOpen,
		}
		if status.IsExpired {
			window.Status = model.WindowExpired
		}
		return window
	}

	loc := e.calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	intake := e.calendar.WindowFor(institution)
	year := now.In(loc).Year()

	opens := intake.Opens.In(year-1, loc)
	closes := intake.Closes.In(year-1, loc)
	nextOpens := intake.Opens.In(year, loc)
	nextCloses := intake.Closes.In(year, loc)

	window := model.ApplicationWindow{
		OpensAt:         &opens,
		ClosesAt:        &closes,
		NextOpeningDate: &nextOpens,
		NextClosingDate: &nextCloses,
	}

	switch {
	case !now.Before(opens) && !now.After(closes):
		window.Status = model.WindowOpen
		window.IsCurrentlyOpen = true
	case now.After(closes):
		window.Status = model.WindowClosed
	case now.Before(opens):
		window.Status = model.WindowUpcoming
	default:
		window.Status = model.WindowClosed
	}
	return window
}

// FilterOpenInstitutions keeps institutions without a deadline and those whose window is open.
func (e *DeadlineEvaluator) FilterOpenInstitutions(items []model.Institution) []model.Institution {
	out := make([]model.Institution, 0, len(items))
	for _, inst := range items {
		if inst.ApplicationDeadline == nil {
			out = append(out, inst)
			continue
		}
		if e.DetermineApplicationWindow(inst.Name, inst.ApplicationDeadline).IsCurrentlyOpen {
			out = append(out, inst)
		}
	}
	return out
}

// FilterOpenPrograms drops unavailable programs and programs whose deadline passed.
func (e *DeadlineEvaluator) FilterOpenPrograms(items []model.Program) []model.Program {
	out := make([]model.Program, 0, len(items))
	for _, p := range items {
		if e.isActionable(p.IsAvailable, p.ApplicationDeadline) {
			out = append(out, p)
		}
	}
	return out
}

// FilterActiveBursaries drops inactive bursaries and bursaries whose deadline passed.
func (e *DeadlineEvaluator) FilterActiveBursaries(items []model.Bursary) []model.Bursary {
	out := make([]model.Bursary, 0, len(items))
	for _, b := range items {
		if e.isActionable(b.IsActive, b.ApplicationDeadline) {
			out = append(out, b)
		}
	}
	return out
}

// isActionable treats a missing flag as set and a missing deadline as open.
func (e *DeadlineEvaluator) isActionable(flag *bool, deadline *time.Time) bool {
	if flag != nil && !*flag {
		return false
	}
	if deadline == nil {
		return true
	}
	status := e.CheckDeadlineStatus(*deadline)
	return status.IsOpen && !status.IsExpired
}

// GetUpcomingDeadlines returns listings with a deadline in [now, now+daysAhead days],
// ordered by deadline. Listings without a deadline are excluded.
func (e *DeadlineEvaluator) GetUpcomingDeadlines(items []model.Listing, daysAhead int) []model.Listing {
	if daysAhead <= 0 {
		daysAhead = defaultUpcomingDaysAhead
	}
	now := e.clock.Now()
	horizon := now.Add(time.Duration(daysAhead) * day)

	out := make([]model.Listing, 0, len(items))
	for _, item := range items {
		d := item.Deadline()
		if d == nil || d.Before(now) || d.After(horizon) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline().Before(*out[j].Deadline())
	})
	return out
}
