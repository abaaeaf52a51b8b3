package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/usecase"
	"club-scheduler/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxMemberIDKey   = "member_id"
	ctxMemberRoleKey = "member_role"
	ctxClaimsKey     = "jwt_claims"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		memberID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		SetActor(c, shared.Actor{MemberID: memberID, Role: role})
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole member.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetMemberRole(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !role.AtLeast(minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth authenticates the request if a token is present, but does not abort on failure.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		memberID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		SetActor(c, shared.Actor{MemberID: memberID, Role: role})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

// SetActor stores the authenticated caller on the request context.
func SetActor(c *gin.Context, actor shared.Actor) {
	c.Set(ctxMemberIDKey, actor.MemberID)
	c.Set(ctxMemberRoleKey, actor.Role)
	c.Set(ctxClaimsKey, map[string]any{
		"member_id": actor.MemberID.String(),
		"role":      string(actor.Role),
	})
}

func GetMemberID(c *gin.Context) (uuid.UUID, bool) {
	memberID, exists := c.Get(ctxMemberIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := memberID.(uuid.UUID)
	return id, ok
}

func GetMemberRole(c *gin.Context) (member.Role, bool) {
	memberRole, exists := c.Get(ctxMemberRoleKey)
	if !exists {
		return "", false
	}

	role, ok := memberRole.(member.Role)
	return role, ok
}

func GetActor(c *gin.Context) (shared.Actor, bool) {
	id, ok := GetMemberID(c)
	if !ok {
		return shared.Actor{}, false
	}
	role, ok := GetMemberRole(c)
	if !ok {
		return shared.Actor{}, false
	}
	return shared.Actor{MemberID: id, Role: role}, true
}
