package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/utils"
)

// 上下文键
const (
	ctxOwner = "owner"
	ctxRole  = "role"
	ctxToken = "token"
)

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	jwt *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwt *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth 需要认证的中间件
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireRole 需要特定角色的中间件
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		if !HasAnyRole(c, roles...) {
			AbortWithError(c, apperrors.New(apperrors.ErrAuthorization, "权限不足"))
			return
		}
		c.Next()
	}
}

// authenticate 校验令牌并写入上下文，失败时中止请求
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token := extractToken(c)
	if token == "" {
		AbortWithError(c, apperrors.New(apperrors.ErrAuthentication, "缺少认证令牌"))
		return false
	}

	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		code := apperrors.ErrTokenInvalid
		if errors.Is(err, utils.ErrExpiredToken) {
			code = apperrors.ErrTokenExpired
		}
		AbortWithError(c, apperrors.Wrap(err, code))
		return false
	}

	c.Set(ctxOwner, claims.Owner())
	c.Set(ctxRole, claims.Role)
	c.Set(ctxToken, token)
	return true
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 1. Authorization: Bearer <token>
	if bearer := c.GetHeader("Authorization"); bearer != "" {
		parts := strings.SplitN(bearer, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. Query参数，浏览器WebSocket无法设置Header
	return c.Query("token")
}

// GetOwner 从上下文获取调用者身份
func GetOwner(c *gin.Context) (string, bool) {
	if v, exists := c.Get(ctxOwner); exists {
		if owner, ok := v.(string); ok && owner != "" {
			return owner, true
		}
	}
	return "", false
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) (string, bool) {
	if v, exists := c.Get(ctxRole); exists {
		if role, ok := v.(string); ok {
			return role, true
		}
	}
	return "", false
}

// HasAnyRole 检查是否有任一角色
func HasAnyRole(c *gin.Context, roles ...string) bool {
	role, ok := GetRole(c)
	if !ok {
		return false
	}
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
