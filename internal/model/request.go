package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Request status enum constants. Status and BudgetStatus are independent
// axes: BudgetStatus only advances once Status reaches Approved.
const (
	StatusOpen     = "Open"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusVerified = "Verified"
)

// Request represents a travel request moving through the manager,
// budget and verification approval stages.
type Request struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID  uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester    *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"` // requester's display name, denormalized for search
	Status       string    `gorm:"type:varchar(20);not null;default:'Open';index" json:"status"`
	BudgetStatus string    `gorm:"type:varchar(20);not null;default:'Open';index" json:"budget_status"`
	Department   string    `gorm:"type:varchar(100);not null;index" json:"department"`
	ManagerName  string    `gorm:"type:varchar(255);not null" json:"manager_name"`
	Location     string    `gorm:"type:varchar(255);not null" json:"location"` // requester's home location
	Trips        []Trip    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"trips"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// TotalCost is filled from the loaded trips when listing, not stored.
	TotalCost decimal.Decimal `gorm:"-" json:"total_estimated_cost"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Trip is a single leg of a travel request. Destination strings are
// free text ("Nairobi, Kenya") and are matched against centers by
// containment when resolving travel admins.
type Trip struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	Origin        string          `gorm:"type:varchar(255);not null" json:"origin"`
	Destination   string          `gorm:"type:varchar(255);not null" json:"destination"`
	DepartureDate time.Time       `json:"departure_date"`
	ReturnDate    *time.Time      `json:"return_date"`
	EstimatedCost decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"estimated_cost"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TotalEstimatedCost sums the estimated cost of all trips on a request.
func (r *Request) TotalEstimatedCost() decimal.Decimal {
	total := decimal.Zero
	for _, trip := range r.Trips {
		total = total.Add(trip.EstimatedCost)
	}
	return total
}
