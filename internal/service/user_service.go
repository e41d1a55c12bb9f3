package service

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"travelhub/internal/middleware"
	"travelhub/internal/model"
)

// DTOs for request validation

type RegisterUserRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Location    string `json:"location" binding:"required"`
	Department  string `json:"department"`
	ManagerName string `json:"manager_name"`
	RoleID      int    `json:"role_id"`
	Picture     string `json:"picture"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning User without exposing sensitive data
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Location    string    `json:"location"`
	Department  string    `json:"department"`
	ManagerName string    `json:"manager_name"`
	RoleID      int       `json:"role_id"`
	Picture     string    `json:"picture"`
}

// UserService covers registration and login for the directory users
// the approval pipeline runs over.
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func validRole(roleID int) bool {
	switch roleID {
	case model.RoleTravelAdministrator, model.RoleTravelTeamMember, model.RoleManager,
		model.RoleBudgetChecker, model.RoleFinance, model.RoleRequester:
		return true
	}
	return false
}

func mapToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		Location:    user.Location,
		Department:  user.Department,
		ManagerName: user.ManagerName,
		RoleID:      user.RoleID,
		Picture:     user.Picture,
	}
}

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	roleID := req.RoleID
	if roleID == 0 {
		roleID = model.RoleRequester
	}
	if !validRole(roleID) {
		return nil, errors.New("invalid role id")
	}

	var existing model.User
	if err := s.db.WithContext(ctx).First(&existing, "email = ?", req.Email).Error; err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    string(hashedPassword),
		Location:    req.Location,
		Department:  req.Department,
		ManagerName: req.ManagerName,
		RoleID:      roleID,
		Picture:     req.Picture,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", req.Email).Error; err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"name":     user.FullName,
		"email":    user.Email,
		"picture":  user.Picture,
		"role_id":  user.RoleID,
		"location": user.Location,
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid user id")
	}
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return mapToUserResponse(&user), nil
}
