package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelhub/internal/middleware"
	"travelhub/internal/model"
	"travelhub/internal/query"
	"travelhub/internal/service"
	"travelhub/pkg/pagination"
	"travelhub/pkg/response"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
	budgetService   service.BudgetService
	requestService  service.RequestService
}

func NewApprovalHandler(approvalService service.ApprovalService, budgetService service.BudgetService, requestService service.RequestService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		budgetService:   budgetService,
		requestService:  requestService,
	}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approvals")
	approvals.Use(middleware.RequireAuth())
	{
		approvals.GET("", h.ListApprovals)
		approvals.PUT("/:id/decision", middleware.RequireRole(model.RoleManager), h.Decide)
		approvals.PUT("/:id/budget", middleware.RequireRole(model.RoleBudgetChecker), h.DecideBudget)
		approvals.PUT("/:id/verify", middleware.RequireRole(model.RoleTravelTeamMember, model.RoleTravelAdministrator), h.Verify)
	}
}

type decisionDTO struct {
	Decision string `json:"decision" binding:"required"`
}

// ListApprovals returns the approvals view scoped to the caller:
// plain manager approvals, the verification view (?verified=true), or
// the budget-checker view (?checkBudget=true).
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	p := pagination.Parse(c)
	filters := query.Filters{
		Status:       c.Query("status"),
		Search:       c.Query("search"),
		BudgetStatus: c.Query("budgetStatus"),
	}
	verified := c.Query("verified") == "true"
	checkBudget := c.Query("checkBudget") == "true"

	result, err := h.requestService.ListApprovals(c.Request.Context(), filters, p, actor, verified, checkBudget)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMeta(result.Message, result.Requests, result.Counts, result.Pagination))
}

// Decide records the manager's approve/reject decision
func (h *ApprovalHandler) Decide(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request id"))
		return
	}

	var dto decisionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	updated, message, err := h.approvalService.Decide(c.Request.Context(), requestID, dto.Decision, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(message, updated))
}

// DecideBudget records the budget checker's approve/reject decision
func (h *ApprovalHandler) DecideBudget(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request id"))
		return
	}

	var dto decisionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	result, err := h.budgetService.Decide(c.Request.Context(), requestID, dto.Decision, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Authorized {
		c.JSON(http.StatusOK, response.Response{Success: false, Message: result.Message})
		return
	}

	c.JSON(http.StatusOK, response.Success(result.Message, result.Request))
}

// Verify moves an approved request to Verified on behalf of the travel team
func (h *ApprovalHandler) Verify(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request id"))
		return
	}

	updated, message, err := h.approvalService.Verify(c.Request.Context(), requestID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(message, updated))
}
