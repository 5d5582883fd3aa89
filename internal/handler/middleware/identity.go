package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/cookie"
	"storefront/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdentityMiddleware resolves who is shopping. A valid bearer token makes the
// request a user request; otherwise the guest session cookie identifies the
// cart. Both can be present at once (a guest who just logged in); handlers
// that merge carts read both.
type IdentityMiddleware struct {
	tokens *jwt.Service
}

const (
	ctxUserIDKey    = "user_id"
	ctxUserEmailKey = "user_email"
	ctxSessionIDKey = "guest_session_id"
)

func NewIdentityMiddleware(tokens *jwt.Service) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Resolve authenticates the bearer token when present (without requiring it)
// and picks up the guest session cookie. It never aborts.
func (m *IdentityMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			claims, err := m.tokens.ValidateToken(token)
			if err != nil {
				slog.Warn("bearer token rejected", "error", err.Error())
			} else {
				c.Set(ctxUserIDKey, claims.UserID)
				c.Set(ctxUserEmailKey, claims.Email)
				c.Set("jwt_claims", map[string]any{
					"user_id": claims.UserID.String(),
					"email":   claims.Email,
				})
			}
		}

		if sessionID := cookie.GetSessionID(c); sessionID != "" {
			c.Set(ctxSessionIDKey, sessionID)
		}
		c.Next()
	}
}

// EnsureShopper guarantees the request has some cart owner: a user, an
// existing guest session, or a freshly minted one (cookie set on the way
// out). Cart routes chain this after Resolve.
func (m *IdentityMiddleware) EnsureShopper() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); ok {
			c.Next()
			return
		}
		if _, ok := GetSessionID(c); ok {
			c.Next()
			return
		}

		sessionID := uuid.NewString()
		cookie.SetSessionID(c, sessionID)
		c.Set(ctxSessionIDKey, sessionID)
		c.Next()
	}
}

// RequireUser aborts unauthenticated requests; order history and account
// linking need a real user.
func (m *IdentityMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Authentication required"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxUserEmailKey)
	if !exists {
		return "", false
	}
	e, ok := email.(string)
	return e, ok && e != ""
}

func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(ctxSessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := sessionID.(string)
	return id, ok && id != ""
}

// GetOwner folds the resolved identity into the cart owner: the user when
// authenticated, the guest session otherwise.
func GetOwner(c *gin.Context) (cart.Owner, bool) {
	if userID, ok := GetUserID(c); ok {
		return cart.UserOwner(userID), true
	}
	if sessionID, ok := GetSessionID(c); ok {
		return cart.GuestOwner(sessionID), true
	}
	return cart.Owner{}, false
}

// RateIdentity is the key the rate guard buckets by: the user, the guest
// session, or as a last resort the client IP.
func RateIdentity(c *gin.Context) string {
	if owner, ok := GetOwner(c); ok {
		return owner.Key()
	}
	return "ip:" + c.ClientIP()
}
