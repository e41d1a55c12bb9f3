package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelhub/internal/model"
)

func TestUserServiceRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	req := RegisterUserRequest{
		FullName:    "Ada Lovelace",
		Email:       "ada@e.com",
		Password:    "s3cret!",
		Location:    "Lagos",
		Department:  "Engineering",
		ManagerName: "Grace Hopper",
	}

	t.Run("defaults to the requester role", func(t *testing.T) {
		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.RoleRequester, user.RoleID)
		assert.Equal(t, "Ada Lovelace", user.FullName)

		// password is stored hashed, never echoed
		var stored model.User
		require.NoError(t, db.First(&stored, "email = ?", "ada@e.com").Error)
		assert.NotEqual(t, "s3cret!", stored.Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, req)
		assert.EqualError(t, err, "email already exists")
	})

	t.Run("unknown role id", func(t *testing.T) {
		bad := req
		bad.Email = "other@e.com"
		bad.RoleID = 12345
		_, err := svc.Register(ctx, bad)
		assert.EqualError(t, err, "invalid role id")
	})
}

func TestUserServiceLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@e.com",
		Password: "s3cret!",
		Location: "Lagos",
		RoleID:   model.RoleManager,
	})
	require.NoError(t, err)

	t.Run("issues a token with the actor claims", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginUserRequest{Email: "ada@e.com", Password: "s3cret!"})
		require.NoError(t, err)
		require.NotEmpty(t, res.Token)

		token, err := jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte("default_super_secret_key"), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "Ada Lovelace", claims["name"])
		assert.Equal(t, "Lagos", claims["location"])
		assert.EqualValues(t, model.RoleManager, claims["role_id"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginUserRequest{Email: "ada@e.com", Password: "nope"})
		assert.EqualError(t, err, "invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginUserRequest{Email: "ghost@e.com", Password: "s3cret!"})
		assert.EqualError(t, err, "invalid email or password")
	})
}
