package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelhub/internal/middleware"
	"travelhub/internal/query"
	"travelhub/internal/service"
	"travelhub/pkg/pagination"
	"travelhub/pkg/response"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(middleware.RequireAuth())
	{
		requests.POST("", h.Create)
		requests.GET("", h.ListRequests)
		requests.GET("/counts", h.StatusCounts)
	}
}

// Create submits a new travel request on behalf of the caller
func (h *RequestHandler) Create(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	var dto service.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), dto, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success("Request created successfully", created))
}

// ListRequests returns the caller's own requests, filtered and paginated
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	p := pagination.Parse(c)
	filters := query.Filters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	result, err := h.requestService.ListRequests(c.Request.Context(), filters, p, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMeta(result.Message, result.Requests, result.Counts, result.Pagination))
}

// StatusCounts returns the open/past bucket counts for the caller's view
func (h *RequestHandler) StatusCounts(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	filters := query.Filters{Search: c.Query("search")}
	verified := c.Query("verified") == "true"
	checkBudget := c.Query("checkBudget") == "true"

	counts, err := h.requestService.StatusCounts(c.Request.Context(), filters, actor, verified, checkBudget)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("Request counts retrieved successfully", counts))
}
