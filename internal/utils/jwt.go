package utils

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// 角色
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// JWTClaims 自定义JWT Claims
// Subject 即身份标识（宠物主人）
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Owner 返回令牌代表的身份
func (c *JWTClaims) Owner() string {
	return c.Subject
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey []byte
	issuer    string
	expiry    time.Duration
	clock     clock.Clock
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey, issuer string, expiry time.Duration, clk clock.Clock) *JWTManager {
	if clk == nil {
		clk = clock.New()
	}
	return &JWTManager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		expiry:    expiry,
		clock:     clk,
	}
}

// GenerateToken 为身份签发访问令牌
func (j *JWTManager) GenerateToken(owner, role string) (string, error) {
	if owner == "" {
		return "", errors.New("owner 不能为空")
	}
	if role == "" {
		role = RolePlayer
	}

	now := j.clock.Now()
	claims := &JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   owner,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken 验证令牌
func (j *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	},
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry 令牌有效期
func (j *JWTManager) Expiry() time.Duration {
	return j.expiry
}
