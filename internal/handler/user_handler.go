package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelhub/internal/middleware"
	"travelhub/internal/service"
	"travelhub/pkg/response"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for auth endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.GetMe)
	}
}

// Register creates a new user account
// @Summary      Register user
// @Description  Creates a new user account with a hashed password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterUserRequest  true  "Register Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success("User registered successfully", user))
}

// Login authenticates a user and returns a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid request payload"))
		return
	}

	tokenRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(err.Error()))
		return
	}

	// Set token as an HttpOnly cookie
	middleware.SetTokenCookies(c, tokenRes.Token)

	c.JSON(http.StatusOK, response.Success("Login successful", tokenRes))
}

// GetMe returns the currently authenticated user
// @Summary      Get current user
// @Description  Get the currently authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error("User not found in context"))
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), actor.ID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error("User not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success("User retrieved successfully", user))
}

// Logout clears the auth cookie
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success("Logged out", nil))
}
