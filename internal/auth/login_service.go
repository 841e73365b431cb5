package auth

import (
	"errors"
	"fmt"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/database/repo/accounts"
	"github.com/anoixa/tierbed/internal/apperrors"
	cryptopackage "github.com/anoixa/tierbed/utils/crypto"
)

// LoginService 登录服务
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
}

// NewLoginService 创建新的登录服务
func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{
		accountsRepo: accountsRepo,
		jwtService:   jwtService,
	}
}

// Login 校验凭据并签发令牌对
func (s *LoginService) Login(username, password string) (*models.User, *TokenPair, error) {
	user, err := s.accountsRepo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := cryptopackage.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("password comparison failed: %w", err)
	}
	if !ok || !user.IsActive {
		return nil, nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
	}

	pair, err := s.jwtService.GenerateTokens(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return user, pair, nil
}

// Refresh 用刷新令牌换发新的令牌对
func (s *LoginService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ParseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", apperrors.ErrUnauthenticated)
	}
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("%w: token is not a refresh token", apperrors.ErrUnauthenticated)
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	user, err := s.accountsRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user", apperrors.ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperrors.ErrUnauthenticated)
	}

	pair, err := s.jwtService.GenerateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return pair, nil
}
