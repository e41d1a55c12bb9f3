package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelhub/internal/apperr"
	"travelhub/internal/auth"
	"travelhub/internal/cache"
	"travelhub/internal/model"
	"travelhub/internal/notifier"
	"travelhub/internal/repository"
)

// Dispatcher is the notification fan-out consumed by the decision
// services. Satisfied by notifier.Router.
type Dispatcher interface {
	NewRequest(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor)
	RequesterDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor)
	TravelAdminsOnManagerApproval(ctx context.Context, req *model.Request)
	BudgetCheckerRouting(ctx context.Context, req *model.Request)
	ManagerBudgetDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor, decision string)
	FinanceOnBudgetApproved(ctx context.Context, req *model.Request, checkerName string)
	VerifiedFanOut(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor)
}

var _ Dispatcher = (*notifier.Router)(nil)

// ApprovalService owns the manager-approval lifecycle of a request
// and the travel-team verification stage.
type ApprovalService interface {
	Decide(ctx context.Context, requestID uuid.UUID, decision string, actor auth.AuthenticatedActor) (*model.Request, string, error)
	Verify(ctx context.Context, requestID uuid.UUID, actor auth.AuthenticatedActor) (*model.Request, string, error)
}

type approvalService struct {
	requests   repository.RequestRepository
	approvals  repository.ApprovalRepository
	audits     repository.AuditRepository
	txm        repository.TransactionManager
	dispatcher Dispatcher
}

func NewApprovalService(requests repository.RequestRepository, approvals repository.ApprovalRepository, audits repository.AuditRepository, txm repository.TransactionManager, dispatcher Dispatcher) ApprovalService {
	return &approvalService{
		requests:   requests,
		approvals:  approvals,
		audits:     audits,
		txm:        txm,
		dispatcher: dispatcher,
	}
}

func validateDecision(decision string) error {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return &apperr.ValidationError{Reason: fmt.Sprintf("invalid decision %q: must be Approved or Rejected", decision)}
	}
	return nil
}

// Decide records the manager's decision. The approval row is the
// authoritative ledger; the request mirrors it inside the same
// transaction. Notifications are dispatched after the mutation is
// durable and are not awaited.
func (s *approvalService) Decide(ctx context.Context, requestID uuid.UUID, decision string, actor auth.AuthenticatedActor) (*model.Request, string, error) {
	if err := validateDecision(decision); err != nil {
		return nil, "", err
	}

	approval, err := s.approvals.FindByRequestID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", apperr.NewNotFound("Request")
		}
		return nil, "", &apperr.DependencyError{Op: "load approval", Err: err}
	}
	if model.IsTerminal(approval.Status) {
		return nil, "", apperr.NewTerminalState(approval.Status)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		updated, txErr := s.approvals.SetStatusIfOpen(txCtx, requestID, decision)
		if txErr != nil {
			return &apperr.DependencyError{Op: "update approval", Err: txErr}
		}
		if !updated {
			// A concurrent decision won the swap.
			current, readErr := s.approvals.FindByRequestID(txCtx, requestID)
			if readErr != nil {
				return &apperr.DependencyError{Op: "reload approval", Err: readErr}
			}
			return apperr.NewTerminalState(current.Status)
		}
		if txErr := s.requests.UpdateStatus(txCtx, requestID, decision); txErr != nil {
			return &apperr.DependencyError{Op: "update request", Err: txErr}
		}
		return s.writeAudit(txCtx, actor, decisionAction(decision), requestID, decision)
	})
	if err != nil {
		return nil, "", err
	}

	updated, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, "", &apperr.DependencyError{Op: "reload request", Err: err}
	}

	cache.Invalidate(ctx, "counts:*")

	// Fire-and-forget fan-out; the response does not wait for it.
	dispatchCtx := context.WithoutCancel(ctx)
	go func() {
		if decision == model.StatusApproved {
			s.dispatcher.TravelAdminsOnManagerApproval(dispatchCtx, updated)
		}
		s.dispatcher.RequesterDecision(dispatchCtx, updated, actor)
		s.dispatcher.BudgetCheckerRouting(dispatchCtx, updated)
	}()

	return updated, statusUpdateMessage(decision), nil
}

// Verify moves an approved request to Verified on behalf of the
// travel team. The budget axis is not consulted.
func (s *approvalService) Verify(ctx context.Context, requestID uuid.UUID, actor auth.AuthenticatedActor) (*model.Request, string, error) {
	approval, err := s.approvals.FindByRequestID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", apperr.NewNotFound("Request")
		}
		return nil, "", &apperr.DependencyError{Op: "load approval", Err: err}
	}
	if approval.Status == model.StatusVerified {
		return nil, "", apperr.NewTerminalState(model.StatusVerified)
	}
	if approval.Status != model.StatusApproved {
		return nil, "", &apperr.ValidationError{Reason: "Only approved requests can be verified"}
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		updated, txErr := s.approvals.SetStatusIfApproved(txCtx, requestID, model.StatusVerified)
		if txErr != nil {
			return &apperr.DependencyError{Op: "update approval", Err: txErr}
		}
		if !updated {
			current, readErr := s.approvals.FindByRequestID(txCtx, requestID)
			if readErr != nil {
				return &apperr.DependencyError{Op: "reload approval", Err: readErr}
			}
			return apperr.NewTerminalState(current.Status)
		}
		if txErr := s.requests.UpdateStatus(txCtx, requestID, model.StatusVerified); txErr != nil {
			return &apperr.DependencyError{Op: "update request", Err: txErr}
		}
		return s.writeAudit(txCtx, actor, model.ActionVerifyRequest, requestID, model.StatusVerified)
	})
	if err != nil {
		return nil, "", err
	}

	updated, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, "", &apperr.DependencyError{Op: "reload request", Err: err}
	}

	cache.Invalidate(ctx, "counts:*")

	dispatchCtx := context.WithoutCancel(ctx)
	go s.dispatcher.VerifiedFanOut(dispatchCtx, updated, actor)

	return updated, "Request verified successfully", nil
}

func (s *approvalService) writeAudit(ctx context.Context, actor auth.AuthenticatedActor, action string, requestID uuid.UUID, status string) error {
	details, _ := json.Marshal(map[string]interface{}{
		"request_id": requestID.String(),
		"status":     status,
		"decided_at": time.Now().Format(time.RFC3339),
	})
	actorID := actor.ID
	entry := &model.AuditLog{
		UserID:   &actorID,
		Action:   action,
		EntityID: requestID.String(),
		Details:  string(details),
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		return &apperr.DependencyError{Op: "write audit log", Err: err}
	}
	return nil
}

func decisionAction(decision string) string {
	if decision == model.StatusApproved {
		return model.ActionApproveRequest
	}
	return model.ActionRejectRequest
}

func statusUpdateMessage(decision string) string {
	if decision == model.StatusApproved {
		return "Request approved successfully"
	}
	return "Request rejected successfully"
}
