package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"travelhub/internal/auth"
	"travelhub/pkg/response"
)

const actorKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireAuth validates the JWT and stores an AuthenticatedActor in
// the gin context. Core operations receive the actor as a value, never
// the raw claims.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims"))
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims"))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole allows only actors holding one of the given role IDs.
// Must run after RequireAuth.
func RequireRole(allowedRoles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing"))
			return
		}

		for _, role := range allowedRoles {
			if actor.RoleID == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error("Access denied: insufficient permissions"))
	}
}

// CurrentActor returns the actor RequireAuth stored on the context.
func CurrentActor(c *gin.Context) (auth.AuthenticatedActor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return auth.AuthenticatedActor{}, false
	}
	actor, ok := value.(auth.AuthenticatedActor)
	return actor, ok
}

func actorFromClaims(claims jwt.MapClaims) (auth.AuthenticatedActor, bool) {
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return auth.AuthenticatedActor{}, false
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)
	location, _ := claims["location"].(string)
	roleID, _ := claims["role_id"].(float64) // JSON numbers decode as float64

	return auth.AuthenticatedActor{
		ID:       id,
		Name:     name,
		Email:    email,
		Picture:  picture,
		RoleID:   int(roleID),
		Location: location,
	}, true
}

// SetTokenCookies sets access_token as an HttpOnly cookie
func SetTokenCookies(c *gin.Context, accessToken string) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
}

// ClearTokenCookies removes the access_token cookie
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
}
