package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vebops/store/internal/config"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionKeyPrefix = "store:session:"

// AuthService 登录/登出/会话。JWT放在X-Auth-Token头里，
// 会话同时落Redis，登出即可吊销。
type AuthService struct {
	cfg    *config.Config
	rdb    *redis.Client
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewAuthService(cfg *config.Config, rdb *redis.Client, repos *repository.Repositories, logger *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, repos: repos, logger: logger}
}

// Claims 令牌载荷
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult 登录响应
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, BadRequest("Email and password are required")
	}

	user, err := s.repos.User.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, Unauthorized("Invalid email or password")
	}

	token, tokenID, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+tokenID, user.ID, s.cfg.Auth.TokenExpire).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return &LoginResult{Token: token, User: toUserDTO(user)}, nil
}

// Logout 删除Redis会话，令牌立即失效
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil // 已失效的令牌登出视为成功
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+claims.ID).Err()
}

// Authenticate 校验令牌并加载用户
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.UserAccount, error) {
	if token == "" {
		return nil, Unauthorized("Authentication required")
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, Unauthorized("Invalid or expired token")
	}

	exists, err := s.rdb.Exists(ctx, sessionKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, Unauthorized("Session expired")
	}

	user, err := s.repos.User.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized("Session expired")
		}
		return nil, err
	}
	return user, nil
}

// HashPassword bcrypt加密
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) issueToken(user *entity.UserAccount) (string, string, error) {
	tokenID := uuid.New().String()
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    s.cfg.Auth.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenExpire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.Secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, tokenID, nil
}

func (s *AuthService) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
