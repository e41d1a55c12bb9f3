package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a persisted in-app notification. Delivery over the
// websocket hub is best effort; the row is the source of truth.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID    uuid.UUID `gorm:"type:uuid" json:"sender_id"`
	SenderName  string    `gorm:"type:varchar(255)" json:"sender_name"`
	SenderImage string    `gorm:"type:text" json:"sender_image"`
	Type        string    `gorm:"type:varchar(30);not null;default:'general'" json:"type"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Link        string    `gorm:"type:text" json:"link"`
	Status      string    `gorm:"type:varchar(10);not null;default:'unread';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
