package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelhub/internal/model"
)

// NotificationRepository persists in-app notifications and the
// read-marking operations exposed to the API layer.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	var rows []model.Notification
	err := GetDB(ctx, r.db).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND status = ?", recipientID, model.NotificationUnread).
		Count(&n).Error
	return n, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("status", model.NotificationRead)
	return res.RowsAffected > 0, res.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND status = ?", recipientID, model.NotificationUnread).
		Update("status", model.NotificationRead).Error
}
