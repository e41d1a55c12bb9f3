package notifier

import (
	"travelhub/internal/model"
)

// Event is the closed set of business events that produce
// notifications. Each variant carries its own typed payload; the
// catalog turns a variant into rendered text.
type Event interface {
	eventName() string
}

// NewRequestSubmitted notifies the manager that a direct report
// submitted a travel request.
type NewRequestSubmitted struct {
	Request *model.Request
}

func (NewRequestSubmitted) eventName() string { return "new request submitted" }

// ManagerDecision notifies the requester that their manager approved
// or rejected the request.
type ManagerDecision struct {
	Request  *model.Request
	Decision string
}

func (ManagerDecision) eventName() string { return "manager decision" }

// TravelAdminManagerApproval notifies travel admins at the trip
// locations that a manager approved a request headed their way.
type TravelAdminManagerApproval struct {
	Request *model.Request
}

func (TravelAdminManagerApproval) eventName() string { return "travel admin manager approval" }

// BudgetCheckerRouting asks the budget checkers of the requester's
// department to take the budget decision.
type BudgetCheckerRouting struct {
	Request *model.Request
}

func (BudgetCheckerRouting) eventName() string { return "budget checker routing" }

// BudgetDecision notifies the request's manager of the budget
// checker's decision.
type BudgetDecision struct {
	Request  *model.Request
	Decision string
}

func (BudgetDecision) eventName() string { return "budget decision" }

// FinanceBudgetApproved notifies the finance team of a successful
// budget check.
type FinanceBudgetApproved struct {
	Request           *model.Request
	BudgetCheckerName string
}

func (FinanceBudgetApproved) eventName() string { return "finance budget approved" }

// RequestVerified notifies destination travel admins, the manager and
// finance that the travel team verified a request.
type RequestVerified struct {
	Request *model.Request
}

func (RequestVerified) eventName() string { return "request verified" }
