package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelhub/internal/model"
)

// ApprovalRepository owns the approval ledger rows. The guarded
// updates are compare-and-swap writes: they only land while the axis
// is still Open (or Approved, for verification), so two racing
// decisions cannot both succeed.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.Approval, error)
	SetStatusIfOpen(ctx context.Context, requestID uuid.UUID, status string) (bool, error)
	SetStatusIfApproved(ctx context.Context, requestID uuid.UUID, status string) (bool, error)
	SetBudgetStatusIfOpen(ctx context.Context, requestID uuid.UUID, budgetStatus, approver string, at time.Time) (bool, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	if err := GetDB(ctx, r.db).First(&approval, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) SetStatusIfOpen(ctx context.Context, requestID uuid.UUID, status string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Approval{}).
		Where("request_id = ? AND status = ?", requestID, model.StatusOpen).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *approvalRepository) SetStatusIfApproved(ctx context.Context, requestID uuid.UUID, status string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Approval{}).
		Where("request_id = ? AND status = ?", requestID, model.StatusApproved).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *approvalRepository) SetBudgetStatusIfOpen(ctx context.Context, requestID uuid.UUID, budgetStatus, approver string, at time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Approval{}).
		Where("request_id = ? AND budget_status = ?", requestID, model.StatusOpen).
		Updates(map[string]interface{}{
			"budget_status":      budgetStatus,
			"budget_approver":    approver,
			"budget_approved_at": at,
		})
	return res.RowsAffected > 0, res.Error
}
