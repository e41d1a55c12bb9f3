package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"travelhub/internal/apperr"
	"travelhub/internal/auth"
	"travelhub/internal/cache"
	"travelhub/internal/directory"
	"travelhub/internal/model"
	"travelhub/internal/query"
	"travelhub/internal/repository"
	"travelhub/pkg/pagination"
)

const countsCacheTTL = 30 * time.Second

// --- DTOs ---

type CreateTripDTO struct {
	Origin        string     `json:"origin" binding:"required"`
	Destination   string     `json:"destination" binding:"required"`
	DepartureDate time.Time  `json:"departure_date" binding:"required"`
	ReturnDate    *time.Time `json:"return_date"`
	EstimatedCost string     `json:"estimated_cost"`
}

type CreateRequestDTO struct {
	Trips []CreateTripDTO `json:"trips" binding:"required,min=1,dive"`
}

// ListResult is one page of requests plus the metadata the envelope
// carries: the selected message, status-bucket counts and pagination.
type ListResult struct {
	Requests   []model.Request
	Message    string
	Counts     interface{}
	Pagination pagination.Data
}

// RequestService coordinates request creation and the listing and
// counting views over requests and approvals.
type RequestService interface {
	Create(ctx context.Context, dto CreateRequestDTO, actor auth.AuthenticatedActor) (*model.Request, error)
	ListRequests(ctx context.Context, f query.Filters, p pagination.Params, actor auth.AuthenticatedActor) (*ListResult, error)
	ListApprovals(ctx context.Context, f query.Filters, p pagination.Params, actor auth.AuthenticatedActor, verified, checkBudget bool) (*ListResult, error)
	StatusCounts(ctx context.Context, f query.Filters, actor auth.AuthenticatedActor, verified, checkBudget bool) (interface{}, error)
}

type requestService struct {
	requests   repository.RequestRepository
	approvals  repository.ApprovalRepository
	audits     repository.AuditRepository
	txm        repository.TransactionManager
	dir        directory.Directory
	dispatcher Dispatcher
}

func NewRequestService(requests repository.RequestRepository, approvals repository.ApprovalRepository, audits repository.AuditRepository, txm repository.TransactionManager, dir directory.Directory, dispatcher Dispatcher) RequestService {
	return &requestService{
		requests:   requests,
		approvals:  approvals,
		audits:     audits,
		txm:        txm,
		dir:        dir,
		dispatcher: dispatcher,
	}
}

// Create stores the request, its trips and the open approval ledger
// row in one transaction, then notifies the manager.
func (s *requestService) Create(ctx context.Context, dto CreateRequestDTO, actor auth.AuthenticatedActor) (*model.Request, error) {
	requester, err := s.dir.FindByID(ctx, actor.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NewNotFound("User")
		}
		return nil, &apperr.DependencyError{Op: "load requester", Err: err}
	}
	if requester.ManagerName == "" {
		return nil, &apperr.ValidationError{Reason: "You have no manager on record; contact an administrator"}
	}

	trips := make([]model.Trip, 0, len(dto.Trips))
	for _, t := range dto.Trips {
		cost := decimal.Zero
		if t.EstimatedCost != "" {
			parsed, parseErr := decimal.NewFromString(t.EstimatedCost)
			if parseErr != nil {
				return nil, &apperr.ValidationError{Reason: fmt.Sprintf("invalid estimated cost %q", t.EstimatedCost)}
			}
			cost = parsed
		}
		trips = append(trips, model.Trip{
			Origin:        t.Origin,
			Destination:   t.Destination,
			DepartureDate: t.DepartureDate,
			ReturnDate:    t.ReturnDate,
			EstimatedCost: cost,
		})
	}

	req := &model.Request{
		RequesterID:  requester.ID,
		Name:         requester.FullName,
		Status:       model.StatusOpen,
		BudgetStatus: model.StatusOpen,
		Department:   requester.Department,
		ManagerName:  requester.ManagerName,
		Location:     requester.Location,
		Trips:        trips,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := s.requests.Create(txCtx, req); txErr != nil {
			return &apperr.DependencyError{Op: "create request", Err: txErr}
		}
		approval := &model.Approval{
			RequestID:    req.ID,
			ApproverName: requester.ManagerName,
			Status:       model.StatusOpen,
			BudgetStatus: model.StatusOpen,
		}
		if txErr := s.approvals.Create(txCtx, approval); txErr != nil {
			return &apperr.DependencyError{Op: "create approval", Err: txErr}
		}
		actorID := actor.ID
		entry := &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionCreateRequest,
			EntityID:   req.ID.String(),
			EntityName: req.Name,
		}
		if txErr := s.audits.Log(txCtx, entry); txErr != nil {
			return &apperr.DependencyError{Op: "write audit log", Err: txErr}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, "counts:*")

	dispatchCtx := context.WithoutCancel(ctx)
	go s.dispatcher.NewRequest(dispatchCtx, req, actor)

	return req, nil
}

// ListRequests pages the requester's own travel requests.
func (s *requestService) ListRequests(ctx context.Context, f query.Filters, p pagination.Params, actor auth.AuthenticatedActor) (*ListResult, error) {
	f.RequesterID = actor.ID

	noSearch := f
	noSearch.Search = ""

	rows, total, err := s.requests.List(ctx,
		query.BuildRequestPredicate(f),
		query.BuildRequestPredicate(noSearch),
		f.Search, p)
	if err != nil {
		return nil, &apperr.DependencyError{Op: "list requests", Err: err}
	}

	counts, err := s.cachedStatusCounts(ctx, s.countsKey("requests", actor, f, false, false),
		query.BuildCountPredicate(f, false))
	if err != nil {
		return nil, err
	}

	return s.buildResult(rows, total, p, f, counts, "Request"), nil
}

// ListApprovals pages the approvals assigned to the actor: the plain
// manager view, the verification view, or the budget-checker view.
func (s *requestService) ListApprovals(ctx context.Context, f query.Filters, p pagination.Params, actor auth.AuthenticatedActor, verified, checkBudget bool) (*ListResult, error) {
	f, err := s.scopeApprovalFilters(ctx, f, actor, verified, checkBudget)
	if err != nil {
		return nil, err
	}

	noSearch := f
	noSearch.Search = ""

	pred := s.approvalPredicate(f, verified, checkBudget)
	tripPred := s.approvalPredicate(noSearch, verified, checkBudget)

	rows, total, err := s.requests.List(ctx, pred, tripPred, f.Search, p)
	if err != nil {
		return nil, &apperr.DependencyError{Op: "list approvals", Err: err}
	}

	counts, err := s.countsFor(ctx, f, actor, verified, checkBudget)
	if err != nil {
		return nil, err
	}

	return s.buildResult(rows, total, p, f, counts, "Approval"), nil
}

// StatusCounts exposes the status-bucket counts on their own,
// consistent with the listing filters.
func (s *requestService) StatusCounts(ctx context.Context, f query.Filters, actor auth.AuthenticatedActor, verified, checkBudget bool) (interface{}, error) {
	f, err := s.scopeApprovalFilters(ctx, f, actor, verified, checkBudget)
	if err != nil {
		return nil, err
	}
	return s.countsFor(ctx, f, actor, verified, checkBudget)
}

func (s *requestService) scopeApprovalFilters(ctx context.Context, f query.Filters, actor auth.AuthenticatedActor, verified, checkBudget bool) (query.Filters, error) {
	switch {
	case checkBudget:
		departments, err := s.dir.DepartmentsOf(ctx, actor.ID)
		if err != nil {
			return f, &apperr.DependencyError{Op: "load budget departments", Err: err}
		}
		f.Departments = departments
	case verified:
		f.Location = actor.Location
	default:
		f.ApproverName = actor.Name
	}
	return f, nil
}

func (s *requestService) approvalPredicate(f query.Filters, verified, checkBudget bool) query.Predicate {
	pred := query.BuildApprovalPredicate(f, checkBudget)
	if verified {
		pred = query.And(pred, verifiedScope())
	}
	return pred
}

func verifiedScope() query.Predicate {
	return query.And(
		query.In("status", []string{model.StatusApproved, model.StatusVerified}),
		query.Eq("budget_status", model.StatusApproved),
	)
}

func (s *requestService) countsFor(ctx context.Context, f query.Filters, actor auth.AuthenticatedActor, verified, checkBudget bool) (interface{}, error) {
	base := query.BuildCountPredicate(f, checkBudget)
	key := s.countsKey("approvals", actor, f, verified, checkBudget)

	if verified {
		var counts repository.VerifiedCounts
		if ok, _ := cache.GetJSON(ctx, key, &counts); ok {
			return counts, nil
		}
		counts, err := s.requests.CountVerifiedByStatus(ctx, base)
		if err != nil {
			return nil, &apperr.DependencyError{Op: "count verified", Err: err}
		}
		cache.SetJSON(ctx, key, counts, countsCacheTTL)
		return counts, nil
	}
	return s.cachedStatusCounts(ctx, key, base)
}

func (s *requestService) cachedStatusCounts(ctx context.Context, key string, base query.Predicate) (interface{}, error) {
	var counts repository.StatusCounts
	if ok, _ := cache.GetJSON(ctx, key, &counts); ok {
		return counts, nil
	}
	counts, err := s.requests.CountByStatus(ctx, base)
	if err != nil {
		return nil, &apperr.DependencyError{Op: "count by status", Err: err}
	}
	cache.SetJSON(ctx, key, counts, countsCacheTTL)
	return counts, nil
}

func (s *requestService) countsKey(view string, actor auth.AuthenticatedActor, f query.Filters, verified, checkBudget bool) string {
	return fmt.Sprintf("counts:%s:%s:%v:%v:%s:%s:%s:%s",
		view, actor.ID, verified, checkBudget,
		strings.ToLower(f.Search), strings.ToLower(f.BudgetStatus),
		strings.ToLower(f.Location), strings.Join(f.Departments, ","))
}

func (s *requestService) buildResult(rows []model.Request, total int64, p pagination.Params, f query.Filters, counts interface{}, modelName string) *ListResult {
	for i := range rows {
		rows[i].TotalCost = rows[i].TotalEstimatedCost()
	}
	pageData := pagination.GetPaginationData(p.Page, p.Limit, total)
	message := pagination.ResponseMessage(pageData, f.Status, modelName)
	if f.Search != "" && total == 0 {
		message = "No records found"
	}
	return &ListResult{
		Requests:   rows,
		Message:    message,
		Counts:     counts,
		Pagination: pageData,
	}
}
