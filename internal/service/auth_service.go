package service

import (
	"strings"
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenExpireHours = 24

// AuthService 令牌解析服务，签发仅供本地工具使用
type AuthService struct {
	cfg      config.JWTConfig
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg config.JWTConfig, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	UID    string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken 生成 JWT Token
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	if user == nil || user.ID == 0 || strings.TrimSpace(user.UID) == "" {
		return "", time.Time{}, ErrUserNotFound
	}
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = defaultTokenExpireHours
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := JWTClaims{
		UserID: user.ID,
		UID:    user.UID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken 解析 JWT 并还原调用方身份
func (s *AuthService) ParseToken(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" || s.cfg.SecretKey == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 || strings.TrimSpace(claims.UID) == "" {
		return nil, ErrInvalidToken
	}

	principal := &Principal{ID: claims.UserID, UID: claims.UID, Role: claims.Role}
	if s.userRepo == nil {
		return principal, nil
	}
	// 以数据库中的角色与状态为准
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.UID != claims.UID || user.Status != constants.UserStatusActive {
		return nil, ErrInvalidToken
	}
	principal.Role = user.Role
	return principal, nil
}
