package usecase

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MonthDay is a calendar date without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses an "MM-DD" string.
func ParseMonthDay(s string) (MonthDay, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: expected MM-DD", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	md := MonthDay{Month: time.Month(month), Day: day}
	if err := md.validate(); err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: %w", s, err)
	}
	return md, nil
}

func (md MonthDay) validate() error {
	if md.Month < time.January || md.Month > time.December {
		return fmt.Errorf("month %d out of range", md.Month)
	}
	// 2024 is a leap year so Feb 29 is accepted.
	probe := time.Date(2024, md.Month, md.Day, 0, 0, 0, 0, time.UTC)
	if md.Day < 1 || probe.Month() != md.Month {
		return fmt.Errorf("day %d out of range for %s", md.Day, md.Month)
	}
	return nil
}

// In returns midnight of the month-day in the given year and location.
func (md MonthDay) In(year int, loc *time.Location) time.Time {
	return time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// IntakeWindow is the yearly acceptance period of an institution.
type IntakeWindow struct {
	Opens  MonthDay
	Closes MonthDay
}

// CalendarPolicy is the academic calendar used when a listing has no explicit deadline.
type CalendarPolicy struct {
	Default   IntakeWindow
	Location  *time.Location
	overrides map[string]IntakeWindow
}

// DefaultIntakeWindow is the main South African intake, March 1 to September 30.
var DefaultIntakeWindow = IntakeWindow{
	Opens:  MonthDay{Month: time.March, Day: 1},
	Closes: MonthDay{Month: time.September, Day: 30},
}

func NewCalendarPolicy(loc *time.Location) *CalendarPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarPolicy{Default: DefaultIntakeWindow, Location: loc, overrides: map[string]IntakeWindow{}}
}

// SetOverride registers a window for one institution. Names match case-insensitively.
func (p *CalendarPolicy) SetOverride(institution string, w IntakeWindow) {
	if p.overrides == nil {
		p.overrides = map[string]IntakeWindow{}
	}
	p.overrides[normalizeName(institution)] = w
}

// WindowFor returns the override for the institution or the default window.
func (p *CalendarPolicy) WindowFor(institution string) IntakeWindow {
	if w, ok := p.overrides[normalizeName(institution)]; ok {
		return w
	}
	return p.Default
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type calendarFile struct {
	Default      *windowFile           `yaml:"default"`
	Institutions map[string]windowFile `yaml:"institutions"`
}

type windowFile struct {
	Opens  string `yaml:"opens"`
	Closes string `yaml:"closes"`
}

func (w windowFile) parse() (IntakeWindow, error) {
	opens, err := ParseMonthDay(w.Opens)
	if err != nil {
		return IntakeWindow{}, fmt.Errorf("opens: %w", err)
	}
	closes, err := ParseMonthDay(w.Closes)
	if err != nil {
		return IntakeWindow{}, fmt.Errorf("closes: %w", err)
	}
	return IntakeWindow{Opens: opens, Closes: closes}, nil
}

// ParseCalendarPolicy decodes a YAML calendar policy.
func ParseCalendarPolicy(data []byte, loc *time.Location) (*CalendarPolicy, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode calendar policy: %w", err)
	}

	policy := NewCalendarPolicy(loc)
	if file.Default != nil {
		w, err := file.Default.parse()
		if err != nil {
			return nil, fmt.Errorf("default window: %w", err)
		}
		policy.Default = w
	}
	for name, wf := range file.Institutions {
		w, err := wf.parse()
		if err != nil {
			return nil, fmt.Errorf("window for %q: %w", name, err)
		}
		policy.SetOverride(name, w)
	}
	return policy, nil
}

// LoadCalendarPolicy reads the policy file at path. An empty path yields the default policy.
func LoadCalendarPolicy(path string, loc *time.Location) (*CalendarPolicy, error) {
	if path == "" {
		return NewCalendarPolicy(loc), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar policy: %w", err)
	}
	return ParseCalendarPolicy(data, loc)
}
