package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

type identity struct {
	UserID   string
	Role     string
	AgencyID string
}

// AuthRequired resolves the caller identity from a Bearer token and aborts
// with 401 when it cannot be established.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		id, err := h.parseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		c.Set("identity", id)
		c.Next()
	}
}

// bearerToken pulls the token from the Authorization header, falling back
// to a "token" query parameter for websocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

func (h *Handler) parseToken(tokenString string) (identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, errors.New("invalid claims")
	}

	id := identity{}
	id.UserID, _ = claims["user_id"].(string)
	id.Role, _ = claims["role"].(string)
	id.AgencyID, _ = claims["agency_id"].(string)
	if id.UserID == "" || id.Role == "" {
		return identity{}, errors.New("incomplete claims")
	}
	return id, nil
}

// callerIdentity returns the identity set by AuthRequired.
func callerIdentity(c *gin.Context) identity {
	v, _ := c.Get("identity")
	id, _ := v.(identity)
	return id
}
