package query

import (
	"strings"

	"github.com/google/uuid"

	"travelhub/internal/model"
)

// Filters are the raw listing parameters accepted by the inbound
// operations. Empty fields constrain nothing.
type Filters struct {
	Status       string // open | past | approved | rejected | verified
	Search       string
	BudgetStatus string // open | past
	Location     string
	RequesterID  uuid.UUID
	ApproverName string
	Departments  []string
}

var requestSearchColumns = []string{"name", "location", "department", "manager_name"}
var tripSearchColumns = []string{"origin", "destination"}

var pastStatuses = []string{model.StatusApproved, model.StatusRejected, model.StatusVerified}
var pastBudgetStatuses = []string{model.StatusApproved, model.StatusRejected}

// NormalizeStatus maps a lowercase filter value to its canonical
// status constant. Unknown values fall back to Open.
func NormalizeStatus(status string) string {
	switch strings.ToLower(status) {
	case "approved":
		return model.StatusApproved
	case "rejected":
		return model.StatusRejected
	case "verified":
		return model.StatusVerified
	default:
		return model.StatusOpen
	}
}

// StatusPredicate renders the status filter. Terminal values and
// "open" use equality, "past" uses membership in the complement of
// {Open}, and the empty filter constrains nothing.
func StatusPredicate(status string) Predicate {
	switch strings.ToLower(status) {
	case "":
		return Predicate{}
	case "past":
		return In("status", pastStatuses)
	default:
		return Eq("status", NormalizeStatus(status))
	}
}

// RequestSearch matches the search term against the request's
// searchable columns, OR-combined.
func RequestSearch(term string) Predicate {
	return searchOver(requestSearchColumns, "", term)
}

// TripSearch matches the search term against the nested trip columns.
// Used by the second pass of the two-pass search fallback, where the
// repository has joined the trips table.
func TripSearch(term string) Predicate {
	return searchOver(tripSearchColumns, "trips.", term)
}

func searchOver(columns []string, prefix, term string) Predicate {
	if term == "" {
		return Predicate{}
	}
	preds := make([]Predicate, 0, len(columns))
	for _, col := range columns {
		preds = append(preds, Contains(prefix+col, term))
	}
	return Or(preds...)
}

// BudgetPredicate renders the budget filter. "open" selects requests
// awaiting a budget decision, "past" selects decided ones, and the
// empty filter selects every budget-approval-eligible record.
func BudgetPredicate(filter string) Predicate {
	switch strings.ToLower(filter) {
	case "open":
		return And(
			Eq("budget_status", model.StatusOpen),
			Eq("status", model.StatusApproved),
		)
	case "past":
		return In("budget_status", pastBudgetStatuses)
	default:
		return Or(
			Eq("status", model.StatusApproved),
			And(
				Eq("status", model.StatusVerified),
				Eq("budget_status", model.StatusApproved),
			),
		)
	}
}

// BuildRequestPredicate assembles the base predicate for a requester's
// own listing: scope, status and search over request columns.
func BuildRequestPredicate(f Filters) Predicate {
	return And(
		scope(f),
		StatusPredicate(f.Status),
		RequestSearch(f.Search),
	)
}

// BuildApprovalPredicate assembles the base predicate for the
// approvals listing, optionally narrowed by the budget filter.
func BuildApprovalPredicate(f Filters, checkBudget bool) Predicate {
	preds := []Predicate{scope(f), StatusPredicate(f.Status), RequestSearch(f.Search)}
	if checkBudget {
		preds = append(preds, BudgetPredicate(f.BudgetStatus))
	}
	return And(preds...)
}

// BuildCountPredicate is the listing predicate minus its status
// filter, so status-bucket counts reflect the active search and scope.
func BuildCountPredicate(f Filters, checkBudget bool) Predicate {
	stripped := f
	stripped.Status = ""
	return BuildApprovalPredicate(stripped, checkBudget)
}

// DepartmentScope narrows budget listings to the budget checker's
// departments, matched case-insensitively.
func DepartmentScope(departments []string) Predicate {
	preds := make([]Predicate, 0, len(departments))
	for _, dept := range departments {
		preds = append(preds, IEq("department", dept))
	}
	return Or(preds...)
}

func scope(f Filters) Predicate {
	var preds []Predicate
	if f.RequesterID != uuid.Nil {
		preds = append(preds, Eq("requester_id", f.RequesterID))
	}
	if f.ApproverName != "" {
		preds = append(preds, Eq("manager_name", f.ApproverName))
	}
	if f.Location != "" {
		preds = append(preds, Prefix("location", f.Location))
	}
	if len(f.Departments) > 0 {
		preds = append(preds, DepartmentScope(f.Departments))
	}
	return And(preds...)
}
