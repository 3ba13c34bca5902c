package model

import "time"

// ListingKind names a collection that carries application deadlines.
type ListingKind string

const (
	ListingInstitutions ListingKind = "institutions"
	ListingPrograms     ListingKind = "programs"
	ListingBursaries    ListingKind = "bursaries"
)

// ListingKinds is the sweep order.
var ListingKinds = []ListingKind{ListingInstitutions, ListingPrograms, ListingBursaries}

// Listing is anything with an optional application deadline.
type Listing interface {
	Kind() ListingKind
	ListingID() string
	Deadline() *time.Time
}

// Institution is a university or college accepting applications.
type Institution struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	IsFeatured          bool       `json:"is_featured"`
}

func (i Institution) Kind() ListingKind    { return ListingInstitutions }
func (i Institution) ListingID() string    { return i.ID }
func (i Institution) Deadline() *time.Time { return i.ApplicationDeadline }

// Program is a qualification offered by an institution.
type Program struct {
	ID                  string     `json:"id"`
	InstitutionID       string     `json:"institution_id"`
	Name                string     `json:"name"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	IsAvailable         *bool      `json:"is_available,omitempty"`
}

func (p Program) Kind() ListingKind    { return ListingPrograms }
func (p Program) ListingID() string    { return p.ID }
func (p Program) Deadline() *time.Time { return p.ApplicationDeadline }

// Bursary is a funding opportunity.
type Bursary struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Provider            string     `json:"provider"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	IsActive            *bool      `json:"is_active,omitempty"`
}

func (b Bursary) Kind() ListingKind    { return ListingBursaries }
func (b Bursary) ListingID() string    { return b.ID }
func (b Bursary) Deadline() *time.Time { return b.ApplicationDeadline }
