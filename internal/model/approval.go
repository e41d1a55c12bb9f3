package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approval is the ledger row for one request. It is the authoritative
// record of both decision axes; the Request row mirrors it after each
// successful transition.
type Approval struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	Request          *Request   `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	ApproverName     string     `gorm:"type:varchar(255);not null;index" json:"approver_name"` // manager the decision is routed to
	Status           string     `gorm:"type:varchar(20);not null;default:'Open';index" json:"status"`
	BudgetStatus     string     `gorm:"type:varchar(20);not null;default:'Open';index" json:"budget_status"`
	BudgetApprover   string     `gorm:"type:varchar(255)" json:"budget_approver"`
	BudgetApprovedAt *time.Time `json:"budget_approved_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether a decision axis has reached a state that
// forbids further transitions.
func IsTerminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
