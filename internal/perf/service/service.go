package service

import (
	"errors"

	"github.com/bitfantasy/perfeval/internal/config"
	"github.com/bitfantasy/perfeval/internal/perf/cache"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput       = errors.New("无效的请求")
	ErrForbidden          = errors.New("无权限")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmployeeNotFound   = errors.New("员工不存在")
	ErrTableNotFound      = errors.New("考核表不存在")
	ErrScoreOutOfRange    = errors.New("分数超出范围")
)

// Services 绩效服务集合
type Services struct {
	Auth        *AuthService
	Employee    *EmployeeService
	Table       *TableService
	Score       *ScoreService
	Performance *PerformanceService
}

// NewServices 创建绩效服务集合
func NewServices(repos *repository.Repositories, tableCache *cache.TableCache, cfg *config.Config, logger *zap.Logger) *Services {
	tables := NewTableService(repos.Table, tableCache, logger)
	return &Services{
		Auth:        NewAuthService(repos.Credential, repos.Employee, cfg.JWT, logger),
		Employee:    NewEmployeeService(repos.Employee, repos.Department, logger),
		Table:       tables,
		Score:       NewScoreService(repos.Score, repos.Employee, tables, logger),
		Performance: NewPerformanceService(repos.Employee, repos.Score, repos.Table),
	}
}
