package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bitfantasy/perfeval/internal/perf/cache"
	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/bitfantasy/perfeval/internal/validation"
	"go.uber.org/zap"
)

// TableService 考核表服务
type TableService struct {
	repo   *repository.TableRepository
	cache  *cache.TableCache
	logger *zap.Logger
}

func NewTableService(repo *repository.TableRepository, tableCache *cache.TableCache, logger *zap.Logger) *TableService {
	return &TableService{repo: repo, cache: tableCache, logger: logger}
}

// GradeList 按书写顺序解析的评级表，支持 {"A":"10"} 与 [{"grade":"A","value":"10"}] 两种写法
type GradeList []scoring.GradeRule

func (g *GradeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*g = nil
		return nil
	}
	if data[0] == '[' {
		var rules []scoring.GradeRule
		if err := json.Unmarshal(data, &rules); err != nil {
			return err
		}
		*g = rules
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("grades must be an object or array")
	}
	var rules []scoring.GradeRule
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		grade, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		rule := scoring.GradeRule{Grade: grade}
		if err := json.Unmarshal(raw, &rule.Value); err != nil {
			var n json.Number
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("grade %s: invalid value", grade)
			}
			rule.Value = n.String()
		}
		rules = append(rules, rule)
	}
	*g = rules
	return nil
}

// CriterionInput 考核项
type CriterionInput struct {
	Name string `json:"name"`
}

// AttendanceRule 考勤规则
type AttendanceRule struct {
	Rule  string      `json:"rule"`
	Score interface{} `json:"score"`
}

// PublishTableRequest 发布考核表请求
type PublishTableRequest struct {
	Title              string           `json:"title" binding:"required"`
	EvaluationPeriod   string           `json:"evaluationPeriod"`
	Criteria           []CriterionInput `json:"criteria"`
	Grades             GradeList        `json:"grades" validate:"omitempty,unique=Grade,dive"`
	AttendanceRules    []AttendanceRule `json:"attendanceRules"`
	ForcedDistribution bool             `json:"forcedDistribution"`
	Description        json.RawMessage  `json:"description"`
}

// Publish 发布考核表
func (s *TableService) Publish(ctx context.Context, creatorID string, req *PublishTableRequest) (*entity.EvaluationTable, error) {
	if err := validation.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Describe(err))
	}

	title := validation.SanitizeText(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: 考核表名称不能为空", ErrInvalidInput)
	}

	rules := []scoring.GradeRule(req.Grades)
	if len(rules) == 0 {
		rules = scoring.DefaultGradeRules()
	}
	if err := scoring.ValidateGradeRules(rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	scale, err := scoring.NewGradeScale(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	desc, err := s.buildDescription(req, scale)
	if err != nil {
		return nil, err
	}

	ruleJSON, _ := json.Marshal(rules)
	descJSON, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("marshal description: %w", err)
	}
	criteria := make([]CriterionInput, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		if name := validation.SanitizeText(c.Name); name != "" {
			criteria = append(criteria, CriterionInput{Name: name})
		}
	}
	criteriaJSON, _ := json.Marshal(criteria)
	attendance := req.AttendanceRules
	if attendance == nil {
		attendance = []AttendanceRule{}
	}
	attendanceJSON, _ := json.Marshal(attendance)

	table := &entity.EvaluationTable{
		Name:               title,
		Period:             validation.SanitizeText(req.EvaluationPeriod),
		ScoreRule:          string(ruleJSON),
		Description:        string(descJSON),
		Criteria:           string(criteriaJSON),
		AttendanceRules:    string(attendanceJSON),
		ForcedDistribution: req.ForcedDistribution,
		CreatedBy:          creatorID,
	}
	if err := s.repo.Create(ctx, table); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, table.ID)

	s.logger.Info("考核表已发布", zap.Uint("table_id", table.ID), zap.String("name", table.Name))
	return table, nil
}

// buildDescription 未提供维度描述时，考核项归入通用职能按评级打分，每项满分为最高评级分
func (s *TableService) buildDescription(req *PublishTableRequest, scale *scoring.GradeScale) (scoring.Description, error) {
	if len(bytes.TrimSpace(req.Description)) > 0 && !bytes.Equal(bytes.TrimSpace(req.Description), []byte("null")) {
		desc, err := scoring.ParseDescription(req.Description)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return desc, nil
	}

	var top float64
	for _, g := range scale.Grades() {
		if v, _ := scale.Score(g); v > top {
			top = v
		}
	}

	section := &scoring.SectionSpec{Mode: scoring.ModeRating}
	for _, c := range req.Criteria {
		name := validation.SanitizeText(c.Name)
		if name == "" {
			continue
		}
		section.Criteria = append(section.Criteria, scoring.Criterion{Name: name, Max: top})
		section.MaxScore += top
	}
	if len(section.Criteria) == 0 {
		return scoring.Description{}, nil
	}
	return scoring.Description{scoring.General: section}, nil
}

// Get 获取考核表，优先读缓存
func (s *TableService) Get(ctx context.Context, id uint) (*entity.EvaluationTable, error) {
	if table, ok := s.cache.Get(ctx, id); ok {
		return table, nil
	}
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	s.cache.Set(ctx, table)
	return table, nil
}

// List 考核表列表
func (s *TableService) List(ctx context.Context) ([]repository.TableSummary, error) {
	var items []repository.TableSummary
	if s.cache.GetList(ctx, &items) {
		return items, nil
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.TableSummary{}
	}
	s.cache.SetList(ctx, items)
	return items, nil
}

// ParseTableID 解析考核表ID
func ParseTableID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: table_id 无效", ErrInvalidInput)
	}
	return uint(id), nil
}

// ScoringTable 转换为评分引擎使用的考核表
func ScoringTable(t *entity.EvaluationTable) scoring.EvaluationTable {
	table := scoring.EvaluationTable{
		ID:   scoring.TableID(strconv.FormatUint(uint64(t.ID), 10)),
		Name: t.Name,
	}
	if t.ScoreRule != "" {
		table.ScoreRule = json.RawMessage(t.ScoreRule)
	}
	if t.Description != "" {
		table.Description = json.RawMessage(t.Description)
	}
	return table
}
