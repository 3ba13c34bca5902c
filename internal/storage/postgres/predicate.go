package postgres

import (
	"fmt"
	"strings"

	"github.com/polkiloo/apply4me/internal/domain/model"
)

// listingTable maps a listing kind to its table and availability flag column.
type listingTable struct {
	name string
	flag string
	// gated reports whether the flag takes part in the open predicate.
	gated bool
}

var listingTables = map[model.ListingKind]listingTable{
	model.ListingInstitutions: {name: "institutions", flag: "is_featured"},
	model.ListingPrograms:     {name: "programs", flag: "is_available", gated: true},
	model.ListingBursaries:    {name: "bursaries", flag: "is_active", gated: true},
}

func tableFor(kind model.ListingKind) (listingTable, error) {
	t, ok := listingTables[kind]
	if !ok {
		return listingTable{}, fmt.Errorf("unknown listing kind %q", kind)
	}
	return t, nil
}

// openPredicate is the single definition of an open listing shared by the
// in-store counts: no deadline or a deadline not before the $param timestamp,
// and for gated tables a flag that is not explicitly false.
func (t listingTable) openPredicate(param int) string {
	clause := fmt.Sprintf("(application_deadline IS NULL OR application_deadline >= $%d)", param)
	if t.gated {
		clause += " AND " + t.activePredicate()
	}
	return clause
}

func (t listingTable) activePredicate() string {
	return t.flag + " IS DISTINCT FROM FALSE"
}

// expiredPredicate matches rows the sweep still has to deactivate.
func (t listingTable) expiredPredicate(param int) string {
	return fmt.Sprintf("application_deadline < $%d AND %s", param, t.activePredicate())
}

func countExpiredQuery(t listingTable) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", t.name, t.expiredPredicate(1))
}

func deactivateExpiredQuery(t listingTable) string {
	return fmt.Sprintf("UPDATE %s SET %s = FALSE WHERE %s", t.name, t.flag, t.expiredPredicate(1))
}

// summaryQuery counts open and closed rows per table plus deadlines falling
// between $1 and $2 across all tables.
func summaryQuery() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for _, kind := range model.ListingKinds {
		t := listingTables[kind]
		fmt.Fprintf(&b, "(SELECT COUNT(*) FROM %s WHERE %s), ", t.name, t.openPredicate(1))
		fmt.Fprintf(&b, "(SELECT COUNT(*) FROM %s WHERE NOT (%s)), ", t.name, t.openPredicate(1))
	}
	b.WriteString("(SELECT COUNT(*) FROM (")
	for i, kind := range model.ListingKinds {
		if i > 0 {
			b.WriteString(" UNION ALL ")
		}
		fmt.Fprintf(&b, "SELECT application_deadline FROM %s", listingTables[kind].name)
	}
	b.WriteString(") AS deadlines WHERE application_deadline BETWEEN $1 AND $2)")
	return b.String()
}
