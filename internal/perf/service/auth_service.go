package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/perfeval/internal/config"
	"github.com/bitfantasy/perfeval/internal/middleware"
	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost bcrypt 计算强度
var passwordCost = bcrypt.DefaultCost

// AuthService 认证服务
type AuthService struct {
	creds     *repository.CredentialRepository
	employees *repository.EmployeeRepository
	cfg       config.JWTConfig
	logger    *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(creds *repository.CredentialRepository, employees *repository.EmployeeRepository, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{creds: creds, employees: employees, cfg: cfg, logger: logger}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	UserInfo    *entity.Employee `json:"user_info"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// verifyPassword 校验密码，第二个返回值表示存储的是旧版明文需要重新哈希
func verifyPassword(stored, password string) (bool, bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	ok := subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	return ok, ok
}

// Login 用户名密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	cred, err := s.checkCredential(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.FindByID(ctx, cred.EmpID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token, err := s.GenerateToken(emp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, UserInfo: emp}, nil
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	if _, err := s.checkCredential(ctx, req.Username, req.OldPassword); err != nil {
		return err
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.creds.UpdatePassword(ctx, req.Username, hash)
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, empID string) (*entity.Employee, error) {
	emp, err := s.employees.FindByID(ctx, empID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return emp, err
}

func (s *AuthService) checkCredential(ctx context.Context, username, password string) (*entity.Credential, error) {
	cred, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, legacy := verifyPassword(cred.PasswordHash, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if legacy {
		// 旧版明文密码，登录成功后转存为哈希
		hash, err := HashPassword(password)
		if err == nil {
			err = s.creds.UpdatePassword(ctx, cred.Username, hash)
		}
		if err != nil {
			s.logger.Warn("明文密码转存失败", zap.String("username", cred.Username), zap.Error(err))
		}
	}
	return cred, nil
}

// GenerateToken 签发访问令牌
func (s *AuthService) GenerateToken(emp *entity.Employee) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		EmpID:   emp.EmpID,
		EmpName: emp.EmpName,
		IsSA:    emp.IsSA,
		IsRJ:    emp.IsRJ,
		IsPJ:    emp.IsPJ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.EmpID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpire)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
