package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"go.uber.org/zap"
)

// EmployeeService 员工服务
type EmployeeService struct {
	repo        *repository.EmployeeRepository
	departments *repository.DepartmentRepository
	logger      *zap.Logger
}

func NewEmployeeService(repo *repository.EmployeeRepository, departments *repository.DepartmentRepository, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, departments: departments, logger: logger}
}

// Get 获取员工信息
func (s *EmployeeService) Get(ctx context.Context, empID string) (*entity.Employee, error) {
	emp, err := s.repo.FindByID(ctx, empID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

// StaffChecked 评分人可评分的员工列表，超级管理员可见全部
func (s *EmployeeService) StaffChecked(ctx context.Context, viewer scoring.Viewer) ([]entity.Employee, error) {
	if viewer.IsSA {
		return s.repo.FindAll(ctx)
	}
	if viewer.EmpID == "" {
		return []entity.Employee{}, nil
	}
	return s.repo.FindByJudge(ctx, viewer.EmpID)
}

// Departments 全部部门
func (s *EmployeeService) Departments(ctx context.Context) ([]entity.Department, error) {
	return s.departments.FindAll(ctx)
}

// ImportResult 花名册导入结果
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// Import 导入花名册，按工号新建或更新
func (s *EmployeeService) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	rows, err := ParseRoster(filename, r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}
	for _, row := range rows {
		if row.Err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", row.Line, row.Err))
			continue
		}
		created, err := s.repo.Upsert(ctx, row.Employee)
		if err != nil {
			s.logger.Error("导入员工失败", zap.String("emp_id", row.Employee.EmpID), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 保存失败", row.Line))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("花名册导入完成",
		zap.String("file", filename),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}
