package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/bitfantasy/perfeval/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScoreService 评分服务
type ScoreService struct {
	repo      *repository.ScoreRepository
	employees *repository.EmployeeRepository
	tables    *TableService
	logger    *zap.Logger
}

func NewScoreService(repo *repository.ScoreRepository, employees *repository.EmployeeRepository, tables *TableService, logger *zap.Logger) *ScoreService {
	return &ScoreService{repo: repo, employees: employees, tables: tables, logger: logger}
}

// Submit 保存评分。服务端重新校验权限与分数范围，不信任客户端
func (s *ScoreService) Submit(ctx context.Context, viewer scoring.Viewer, sub *scoring.Submission) (*entity.ScoreRecord, error) {
	if err := validation.Validate(sub); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Describe(err))
	}
	tableID, err := ParseTableID(string(sub.TableID))
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.FindByID(ctx, sub.EmpID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	table, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(viewer, emp.Scored(), sub); err != nil {
		s.logger.Warn("拒绝越权评分",
			zap.String("scorer", viewer.EmpID),
			zap.String("emp_id", sub.EmpID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := checkRanges(ScoringTable(table), sub); err != nil {
		return nil, err
	}

	record := &entity.ScoreRecord{
		ID:       uuid.New().String(),
		EmpID:    sub.EmpID,
		TableID:  tableID,
		ScorerID: viewer.EmpID,
		Total:    sub.Total(),
	}
	if v, ok := sub.DimensionTotal(scoring.Professional); ok {
		record.Professional = &v
	}
	if v, ok := sub.DimensionTotal(scoring.General); ok {
		record.General = &v
	}
	if v, ok := sub.DimensionTotal(scoring.Product); ok {
		record.Product = &v
	}
	if sub.ExtraBonus.Score != nil {
		record.ExtraBonus = sub.ExtraBonus.Score
		if sub.ExtraBonus.Reason != nil {
			reason := validation.SanitizeText(*sub.ExtraBonus.Reason)
			sub.ExtraBonus.Reason = &reason
			record.BonusReason = reason
		}
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	record.Payload = string(payload)

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("评分已保存",
		zap.String("record_id", record.ID),
		zap.String("scorer", viewer.EmpID),
		zap.String("emp_id", record.EmpID),
		zap.Float64("total", record.Total),
	)
	return record, nil
}

// History 员工的评分历史
func (s *ScoreService) History(ctx context.Context, empID string) ([]entity.ScoreRecord, error) {
	return s.repo.FindByEmployee(ctx, empID)
}

func checkPermissions(viewer scoring.Viewer, emp scoring.Employee, sub *scoring.Submission) error {
	for _, dim := range scoring.Dimensions {
		if sub.Has(dim) && !scoring.CanScore(dim, viewer, emp) {
			return fmt.Errorf("%w: 您没有权限评分%s", ErrForbidden, dim.Title())
		}
	}
	if sub.Details != nil {
		if sub.Details.Professional != nil && !scoring.CanScore(scoring.Professional, viewer, emp) {
			return fmt.Errorf("%w: 您没有权限评分%s", ErrForbidden, scoring.Professional.Title())
		}
		if sub.Details.General != nil && !scoring.CanScore(scoring.General, viewer, emp) {
			return fmt.Errorf("%w: 您没有权限评分%s", ErrForbidden, scoring.General.Title())
		}
	}
	if sub.ExtraBonus.Score != nil && !viewer.IsSA {
		return fmt.Errorf("%w: 仅超级管理员可以额外加减分", ErrForbidden)
	}
	return nil
}

func checkRanges(table scoring.EvaluationTable, sub *scoring.Submission) error {
	scale, _ := scoring.ParseScoreRule(table.ScoreRule)
	desc, err := scoring.ParseDescription(table.Description)
	if err != nil {
		desc = scoring.Description{}
	}

	if sub.Professional != nil {
		spec := desc[scoring.Professional]
		mode := sub.Professional.Mode
		if spec != nil {
			mode = spec.Mode
		}
		for _, item := range sub.Professional.Items {
			if mode == scoring.ModeScoring {
				if err := checkScored(spec, item); err != nil {
					return err
				}
				continue
			}
			if err := checkRated(scale, spec, item); err != nil {
				return err
			}
		}
	}
	if sub.General != nil {
		for _, item := range *sub.General {
			if err := checkRated(scale, desc[scoring.General], item); err != nil {
				return err
			}
		}
	}
	if sub.Product != nil {
		v := *sub.Product
		limit := -1.0
		if spec := desc[scoring.Product]; spec != nil {
			limit = spec.MaxScore
		}
		if v < 0 || (limit >= 0 && v > limit) {
			return fmt.Errorf("%w: %s %s", ErrScoreOutOfRange, scoring.Product.Title(), scoring.FormatScore(v))
		}
	}
	return nil
}

func checkScored(spec *scoring.SectionSpec, item scoring.ScoreItem) error {
	if spec == nil {
		return fmt.Errorf("%w: 未知评分项 %s", ErrInvalidInput, item.Name)
	}
	c, ok := spec.Criterion(item.Name)
	if !ok {
		return fmt.Errorf("%w: 未知评分项 %s", ErrInvalidInput, item.Name)
	}
	if item.Score < 0 || item.Score > c.Max {
		return fmt.Errorf("%w: %s %s", ErrScoreOutOfRange, item.Name, scoring.FormatScore(item.Score))
	}
	return nil
}

func checkRated(scale *scoring.GradeScale, spec *scoring.SectionSpec, item scoring.ScoreItem) error {
	if spec != nil {
		if _, ok := spec.Criterion(item.Name); !ok {
			return fmt.Errorf("%w: 未知评分项 %s", ErrInvalidInput, item.Name)
		}
	}
	want, ok := scale.Score(item.Grade)
	if !ok {
		return fmt.Errorf("%w: 未知评级 %s", ErrInvalidInput, item.Grade)
	}
	if item.Score != want {
		return fmt.Errorf("%w: %s 评级 %s 对应 %s 分", ErrScoreOutOfRange, item.Name, item.Grade, scoring.FormatScore(want))
	}
	return nil
}
