package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"travelhub/internal/apperr"
	"travelhub/internal/auth"
	"travelhub/internal/model"
	"travelhub/internal/repository"
)

type approvalFixture struct {
	db         *gorm.DB
	service    ApprovalService
	dispatcher *recordingDispatcher
	requestID  uuid.UUID
	manager    auth.AuthenticatedActor
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	db := setupTestDB(t)
	dispatcher := &recordingDispatcher{}

	requests := repository.NewRequestRepository(db)
	approvals := repository.NewApprovalRepository(db)
	audits := repository.NewAuditRepository(db)
	txm := repository.NewTransactionManager(db)

	req := &model.Request{
		RequesterID:  uuid.New(),
		Name:         "Ada Lovelace",
		Status:       model.StatusOpen,
		BudgetStatus: model.StatusOpen,
		Department:   "Engineering",
		ManagerName:  "Grace Hopper",
		Location:     "Lagos",
	}
	require.NoError(t, db.Create(req).Error)
	require.NoError(t, db.Create(&model.Approval{
		RequestID:    req.ID,
		ApproverName: "Grace Hopper",
		Status:       model.StatusOpen,
		BudgetStatus: model.StatusOpen,
	}).Error)

	return &approvalFixture{
		db:         db,
		service:    NewApprovalService(requests, approvals, audits, txm, dispatcher),
		dispatcher: dispatcher,
		requestID:  req.ID,
		manager: auth.AuthenticatedActor{
			ID:       uuid.New(),
			Name:     "Grace Hopper",
			RoleID:   model.RoleManager,
			Location: "Lagos",
		},
	}
}

func (f *approvalFixture) approval(t *testing.T) *model.Approval {
	var approval model.Approval
	require.NoError(t, f.db.First(&approval, "request_id = ?", f.requestID).Error)
	return &approval
}

func TestApprovalServiceDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown decision values", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Decide(ctx, f.requestID, "Maybe", f.manager)
		var verr *apperr.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Decide(ctx, uuid.New(), model.StatusApproved, f.manager)
		var nferr *apperr.NotFoundError
		assert.ErrorAs(t, err, &nferr)
	})

	t.Run("approval mirrors onto the request", func(t *testing.T) {
		f := newApprovalFixture(t)
		updated, message, err := f.service.Decide(ctx, f.requestID, model.StatusApproved, f.manager)
		require.NoError(t, err)
		assert.Equal(t, "Request approved successfully", message)
		assert.Equal(t, model.StatusApproved, updated.Status)
		assert.Equal(t, model.StatusOpen, updated.BudgetStatus)
		assert.Equal(t, model.StatusApproved, f.approval(t).Status)

		var audit model.AuditLog
		require.NoError(t, f.db.First(&audit, "entity_id = ?", f.requestID.String()).Error)
		assert.Equal(t, model.ActionApproveRequest, audit.Action)

		assert.Eventually(t, func() bool {
			return f.dispatcher.has("RequesterDecision") &&
				f.dispatcher.has("TravelAdminsOnManagerApproval") &&
				f.dispatcher.has("BudgetCheckerRouting")
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("rejection skips the travel admin fan-out", func(t *testing.T) {
		f := newApprovalFixture(t)
		updated, message, err := f.service.Decide(ctx, f.requestID, model.StatusRejected, f.manager)
		require.NoError(t, err)
		assert.Equal(t, "Request rejected successfully", message)
		assert.Equal(t, model.StatusRejected, updated.Status)

		assert.Eventually(t, func() bool {
			return f.dispatcher.has("RequesterDecision")
		}, time.Second, 10*time.Millisecond)
		assert.False(t, f.dispatcher.has("TravelAdminsOnManagerApproval"))
	})

	t.Run("second decision hits the terminal guard", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Decide(ctx, f.requestID, model.StatusApproved, f.manager)
		require.NoError(t, err)

		_, _, err = f.service.Decide(ctx, f.requestID, model.StatusRejected, f.manager)
		var terr *apperr.TerminalStateError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "Request has been approved already", err.Error())

		// the losing decision changed nothing
		assert.Equal(t, model.StatusApproved, f.approval(t).Status)
	})
}

func TestApprovalServiceVerify(t *testing.T) {
	ctx := context.Background()
	verifier := auth.AuthenticatedActor{ID: uuid.New(), Name: "Alan Turing", RoleID: model.RoleTravelTeamMember, Location: "Lagos"}

	t.Run("only approved requests can be verified", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Verify(ctx, f.requestID, verifier)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Only approved requests can be verified", err.Error())
	})

	t.Run("verifies an approved request", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Decide(ctx, f.requestID, model.StatusApproved, f.manager)
		require.NoError(t, err)

		updated, message, err := f.service.Verify(ctx, f.requestID, verifier)
		require.NoError(t, err)
		assert.Equal(t, "Request verified successfully", message)
		assert.Equal(t, model.StatusVerified, updated.Status)
		assert.Equal(t, model.StatusVerified, f.approval(t).Status)

		var audit model.AuditLog
		require.NoError(t, f.db.First(&audit, "action = ?", model.ActionVerifyRequest).Error)

		assert.Eventually(t, func() bool {
			return f.dispatcher.has("VerifiedFanOut")
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("verifying twice hits the terminal guard", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Decide(ctx, f.requestID, model.StatusApproved, f.manager)
		require.NoError(t, err)
		_, _, err = f.service.Verify(ctx, f.requestID, verifier)
		require.NoError(t, err)

		_, _, err = f.service.Verify(ctx, f.requestID, verifier)
		var terr *apperr.TerminalStateError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "Request has been verified already", err.Error())
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, _, err := f.service.Verify(ctx, uuid.New(), verifier)
		var nferr *apperr.NotFoundError
		assert.ErrorAs(t, err, &nferr)
	})
}
