package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// token 类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService JWT Token 服务
type JWTService struct {
	secret           []byte
	expiresIn        time.Duration
	refreshExpiresIn time.Duration
}

// NewJWTService 创建新的 JWT 服务
// secret 为空时生成随机密钥并告警，重启后已签发的 token 全部失效
func NewJWTService(secret string, expiresIn, refreshExpiresIn time.Duration) (*JWTService, error) {
	if secret == "" {
		random, err := utils.GenerateRandomToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate fallback JWT secret: %w", err)
		}
		log.Println("[JWT] Warning: jwt_secret not configured, using a random secret; tokens will not survive restarts")
		secret = random
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(secret))
	}

	return &JWTService{
		secret:           []byte(secret),
		expiresIn:        expiresIn,
		refreshExpiresIn: refreshExpiresIn,
	}, nil
}

// GenerateTokens 为用户签发访问/刷新令牌对
func (s *JWTService) GenerateTokens(user *models.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.expiresIn)
	refreshExpiry := now.Add(s.refreshExpiresIn)

	accessToken, err := s.sign(user, TokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := s.sign(user, TokenTypeRefresh, now, refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *JWTService) sign(user *models.User, tokenType string, issuedAt, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"type":     tokenType,
		"jti":      uuid.New().String(),
		"iat":      issuedAt.Unix(),
		"exp":      expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken 解析并校验 token，返回声明
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// UserIDFromClaims 从声明提取用户 ID
func UserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	raw, ok := claims["user_id"]
	if !ok {
		return 0, errors.New("token missing user_id claim")
	}
	id, ok := raw.(float64)
	if !ok {
		return 0, errors.New("token user_id claim has wrong type")
	}
	return uint(id), nil
}
