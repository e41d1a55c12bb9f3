package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelhub/internal/model"
	"travelhub/internal/query"
	"travelhub/pkg/pagination"
)

// StatusCounts buckets requests within a listing scope.
type StatusCounts struct {
	Open int64 `json:"open"`
	Past int64 `json:"past"`
}

// VerifiedCounts buckets the verification view: requests awaiting
// verification versus already verified.
type VerifiedCounts struct {
	Approved int64 `json:"approved"`
	Verified int64 `json:"verified"`
}

// RequestRepository is the storage side of the listing engine plus the
// request writes the decision services need.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateBudgetStatus(ctx context.Context, id uuid.UUID, budgetStatus string) error
	List(ctx context.Context, requestPred, tripPred query.Predicate, search string, p pagination.Params) ([]model.Request, int64, error)
	CountByStatus(ctx context.Context, base query.Predicate) (StatusCounts, error)
	CountVerifiedByStatus(ctx context.Context, base query.Predicate) (VerifiedCounts, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).Preload("Trips").Preload("Requester").First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *requestRepository) UpdateBudgetStatus(ctx context.Context, id uuid.UUID, budgetStatus string) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).Where("id = ?", id).
		Update("budget_status", budgetStatus).Error
}

// List runs the two-pass search. The first pass filters on request
// columns only; if it matches nothing and a search term is active, the
// second pass retries with the term matched against the nested trips
// instead.
func (r *requestRepository) List(ctx context.Context, requestPred, tripPred query.Predicate, search string, p pagination.Params) ([]model.Request, int64, error) {
	rows, total, err := r.listPage(ctx, requestPred, p)
	if err != nil {
		return nil, 0, err
	}
	if total > 0 || search == "" {
		return rows, total, nil
	}

	db := GetDB(ctx, r.db)
	tripMatch := query.TripSearch(search).Apply(
		db.Session(&gorm.Session{NewDB: true}).Model(&model.Trip{}).Select("request_id"),
	)
	scoped := tripPred.Apply(db.Model(&model.Request{})).Where("id IN (?)", tripMatch)
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err = tripPred.Apply(db.Preload("Trips")).
		Where("id IN (?)", tripMatch).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *requestRepository) listPage(ctx context.Context, pred query.Predicate, p pagination.Params) ([]model.Request, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := pred.Apply(db.Model(&model.Request{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Request
	err := pred.Apply(db.Preload("Trips")).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByStatus computes the open/past buckets under the same base
// predicate as the listing, minus its status filter.
func (r *requestRepository) CountByStatus(ctx context.Context, base query.Predicate) (StatusCounts, error) {
	var counts StatusCounts
	var err error
	if counts.Open, err = r.count(ctx, base, query.StatusPredicate("open")); err != nil {
		return counts, err
	}
	if counts.Past, err = r.count(ctx, base, query.StatusPredicate("past")); err != nil {
		return counts, err
	}
	return counts, nil
}

// CountVerifiedByStatus computes the verification-view buckets.
func (r *requestRepository) CountVerifiedByStatus(ctx context.Context, base query.Predicate) (VerifiedCounts, error) {
	var counts VerifiedCounts
	awaiting := query.And(
		query.Eq("status", model.StatusApproved),
		query.Eq("budget_status", model.StatusApproved),
	)
	var err error
	if counts.Approved, err = r.count(ctx, base, awaiting); err != nil {
		return counts, err
	}
	if counts.Verified, err = r.count(ctx, base, query.Eq("status", model.StatusVerified)); err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *requestRepository) count(ctx context.Context, preds ...query.Predicate) (int64, error) {
	var n int64
	err := query.And(preds...).Apply(GetDB(ctx, r.db).Model(&model.Request{})).Count(&n).Error
	return n, err
}

// IsNotFound reports whether err is GORM's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
