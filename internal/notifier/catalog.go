package notifier

import (
	"fmt"

	"travelhub/internal/model"
)

// Rendering maps an event to user-facing text. The catalog is an
// external collaborator boundary: this core only supplies the event
// variant and payload, never formats markup.
type Rendering struct {
	Subject string
	Message string
	Link    string
}

type Catalog interface {
	Render(event Event) Rendering
}

type defaultCatalog struct{}

// NewCatalog returns the built-in plain-text catalog.
func NewCatalog() Catalog {
	return defaultCatalog{}
}

func (defaultCatalog) Render(event Event) Rendering {
	switch e := event.(type) {
	case NewRequestSubmitted:
		return Rendering{
			Subject: "New Travel Request",
			Message: fmt.Sprintf("%s has just submitted a travel request", e.Request.Name),
			Link:    fmt.Sprintf("/requests/%s", e.Request.ID),
		}
	case ManagerDecision:
		verb := "approved your request"
		if e.Decision == model.StatusRejected {
			verb = "rejected your request"
		}
		return Rendering{
			Subject: fmt.Sprintf("Travel %s Request", e.Decision),
			Message: verb,
			Link:    fmt.Sprintf("/requests/%s", e.Request.ID),
		}
	case TravelAdminManagerApproval:
		return Rendering{
			Subject: "Manager Approval",
			Message: fmt.Sprintf("%s's travel request was approved by their manager", e.Request.Name),
			Link:    fmt.Sprintf("/requests/my-verifications/%s", e.Request.ID),
		}
	case BudgetCheckerRouting:
		return Rendering{
			Subject: "Travel Request Approval",
			Message: fmt.Sprintf("%s's travel request awaits a budget check", e.Request.Name),
			Link:    fmt.Sprintf("/requests/budgets/%s", e.Request.ID),
		}
	case BudgetDecision:
		verb := "approved the budget"
		if e.Decision == model.StatusRejected {
			verb = "rejected the request"
		}
		return Rendering{
			Subject: "Budget Decision",
			Message: verb,
			Link:    fmt.Sprintf("/requests/budgets/%s", e.Request.ID),
		}
	case FinanceBudgetApproved:
		return Rendering{
			Subject: fmt.Sprintf("Successful Budget Check for %s's Trip", e.Request.Name),
			Message: fmt.Sprintf("%s passed the budget check by %s", e.Request.Name, e.BudgetCheckerName),
			Link:    fmt.Sprintf("/requests/%s", e.Request.ID),
		}
	case RequestVerified:
		return Rendering{
			Subject: "Travel Request Verified",
			Message: fmt.Sprintf("%s's travel request was verified", e.Request.Name),
			Link:    fmt.Sprintf("/requests/%s", e.Request.ID),
		}
	default:
		return Rendering{Subject: "Travelhub Notification", Message: event.eventName()}
	}
}
