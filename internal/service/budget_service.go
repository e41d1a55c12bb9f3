package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"travelhub/internal/apperr"
	"travelhub/internal/auth"
	"travelhub/internal/cache"
	"travelhub/internal/directory"
	"travelhub/internal/model"
	"travelhub/internal/repository"
)

// BudgetDecisionResult distinguishes a successful decision from the
// neutral not-authorized outcome, which is deliberately not an error.
type BudgetDecisionResult struct {
	Authorized bool
	Message    string
	Request    *model.Request
}

// BudgetService owns the budget-approval axis. It only advances once
// the manager stage has passed, and only for a checker at the
// requester's location.
type BudgetService interface {
	Decide(ctx context.Context, requestID uuid.UUID, decision string, actor auth.AuthenticatedActor) (*BudgetDecisionResult, error)
}

type budgetService struct {
	requests   repository.RequestRepository
	approvals  repository.ApprovalRepository
	audits     repository.AuditRepository
	txm        repository.TransactionManager
	dir        directory.Directory
	dispatcher Dispatcher
}

func NewBudgetService(requests repository.RequestRepository, approvals repository.ApprovalRepository, audits repository.AuditRepository, txm repository.TransactionManager, dir directory.Directory, dispatcher Dispatcher) BudgetService {
	return &budgetService{
		requests:   requests,
		approvals:  approvals,
		audits:     audits,
		txm:        txm,
		dir:        dir,
		dispatcher: dispatcher,
	}
}

func (s *budgetService) Decide(ctx context.Context, requestID uuid.UUID, decision string, actor auth.AuthenticatedActor) (*BudgetDecisionResult, error) {
	if err := validateDecision(decision); err != nil {
		return nil, err
	}

	approval, err := s.approvals.FindByRequestID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NewNotFound("Request")
		}
		return nil, &apperr.DependencyError{Op: "load approval", Err: err}
	}
	if model.IsTerminal(approval.BudgetStatus) {
		return nil, apperr.NewTerminalState(approval.BudgetStatus)
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NewNotFound("Request")
		}
		return nil, &apperr.DependencyError{Op: "load request", Err: err}
	}

	// The budget axis only advances after the manager stage, and only
	// for a checker at the requester's location. Both failures are a
	// quiet no-op rather than a permission error, preserving the
	// externally observable behavior.
	if req.Status != model.StatusApproved || !s.sameLocation(ctx, req, actor) {
		return &BudgetDecisionResult{
			Authorized: false,
			Message:    "You are not authorized to perform this operation",
		}, nil
	}

	decidedAt := time.Now()
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		updated, txErr := s.approvals.SetBudgetStatusIfOpen(txCtx, requestID, decision, actor.Name, decidedAt)
		if txErr != nil {
			return &apperr.DependencyError{Op: "update approval", Err: txErr}
		}
		if !updated {
			current, readErr := s.approvals.FindByRequestID(txCtx, requestID)
			if readErr != nil {
				return &apperr.DependencyError{Op: "reload approval", Err: readErr}
			}
			return apperr.NewTerminalState(current.BudgetStatus)
		}
		if txErr := s.requests.UpdateBudgetStatus(txCtx, requestID, decision); txErr != nil {
			return &apperr.DependencyError{Op: "update request", Err: txErr}
		}
		return s.writeAudit(txCtx, actor, budgetAction(decision), requestID, decision)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, &apperr.DependencyError{Op: "reload request", Err: err}
	}

	cache.Invalidate(ctx, "counts:*")

	dispatchCtx := context.WithoutCancel(ctx)
	go func() {
		s.dispatcher.RequesterDecision(dispatchCtx, updated, actor)
		s.dispatcher.ManagerBudgetDecision(dispatchCtx, updated, actor, decision)
		if decision == model.StatusApproved {
			s.dispatcher.FinanceOnBudgetApproved(dispatchCtx, updated, actor.Name)
		}
	}()

	return &BudgetDecisionResult{
		Authorized: true,
		Message:    "Success",
		Request:    updated,
	}, nil
}

func (s *budgetService) sameLocation(ctx context.Context, req *model.Request, actor auth.AuthenticatedActor) bool {
	requester, err := s.dir.FindByID(ctx, req.RequesterID)
	if err != nil {
		return false
	}
	return requester.Location == actor.Location
}

func (s *budgetService) writeAudit(ctx context.Context, actor auth.AuthenticatedActor, action string, requestID uuid.UUID, status string) error {
	actorID := actor.ID
	entry := &model.AuditLog{
		UserID:   &actorID,
		Action:   action,
		EntityID: requestID.String(),
		Details:  `{"budget_status":"` + status + `"}`,
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		return &apperr.DependencyError{Op: "write audit log", Err: err}
	}
	return nil
}

func budgetAction(decision string) string {
	if decision == model.StatusApproved {
		return model.ActionApproveBudget
	}
	return model.ActionRejectBudget
}
