package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDuplicateGrade 评分规则中等级重复
var ErrDuplicateGrade = errors.New("duplicate grade in score rule")

// GradeRule 评分规则中的一项，value 以数字字符串保存
type GradeRule struct {
	Grade string `json:"grade" validate:"required,grade"`
	Value string `json:"value" validate:"required,numeric"`
}

// UnmarshalJSON 兼容 value 为数字或字符串两种写法
func (r *GradeRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Grade string          `json:"grade"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Grade = raw.Grade
	v, err := rawNumberString(raw.Value)
	if err != nil {
		return fmt.Errorf("grade %q: %w", raw.Grade, err)
	}
	r.Value = v
	return nil
}

// DefaultGradeRules 表中未配置评分规则时使用
func DefaultGradeRules() []GradeRule {
	return []GradeRule{
		{Grade: "A", Value: "10"},
		{Grade: "B+", Value: "8.5"},
		{Grade: "B", Value: "7"},
		{Grade: "C", Value: "5"},
	}
}

// GradeScale 等级到分数的查找表，保留等级顺序
type GradeScale struct {
	grades []string
	scores map[string]float64
}

// NewGradeScale 由规则序列构建查找表。等级重复时后者覆盖前者，顺序保留首次出现的位置。
func NewGradeScale(rules []GradeRule) (*GradeScale, error) {
	s := &GradeScale{scores: make(map[string]float64, len(rules))}
	for _, r := range rules {
		v, ok := parseNumber(strings.TrimSpace(r.Value))
		if !ok {
			return nil, fmt.Errorf("grade %q has non-numeric value %q", r.Grade, r.Value)
		}
		if _, ok := s.scores[r.Grade]; !ok {
			s.grades = append(s.grades, r.Grade)
		}
		s.scores[r.Grade] = v
	}
	return s, nil
}

// DefaultGradeScale 默认评分规则 A/B+/B/C
func DefaultGradeScale() *GradeScale {
	s, _ := NewGradeScale(DefaultGradeRules())
	return s
}

// Grades 按规则顺序返回等级
func (s *GradeScale) Grades() []string {
	out := make([]string, len(s.grades))
	copy(out, s.grades)
	return out
}

// Score 查找等级对应分数
func (s *GradeScale) Score(grade string) (float64, bool) {
	v, ok := s.scores[grade]
	return v, ok
}

func (s *GradeScale) Len() int { return len(s.grades) }

// Rules 转回规则序列
func (s *GradeScale) Rules() []GradeRule {
	out := make([]GradeRule, 0, len(s.grades))
	for _, g := range s.grades {
		out = append(out, GradeRule{Grade: g, Value: FormatScore(s.scores[g])})
	}
	return out
}

// ValidateGradeRules 发布考核表时使用的严格校验
func ValidateGradeRules(rules []GradeRule) error {
	if len(rules) == 0 {
		return errors.New("score rule is empty")
	}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Grade) == "" {
			return errors.New("grade must not be empty")
		}
		if _, ok := seen[r.Grade]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateGrade, r.Grade)
		}
		seen[r.Grade] = struct{}{}
		if _, ok := parseNumber(strings.TrimSpace(r.Value)); !ok {
			return fmt.Errorf("grade %q has non-numeric value %q", r.Grade, r.Value)
		}
	}
	return nil
}

// ParseScoreRule 解析考核表中的 score_rule。
// 输入可以是 JSON 字符串包裹的数组，也可以是数组本身；缺失时返回默认规则。
// 解析失败时返回默认规则和错误，由调用方记录日志后继续渲染。
func ParseScoreRule(raw json.RawMessage) (*GradeScale, error) {
	data, err := unwrapJSONString(raw)
	if err != nil {
		return DefaultGradeScale(), fmt.Errorf("decode score_rule: %w", err)
	}
	if data == nil {
		return DefaultGradeScale(), nil
	}

	var rules []GradeRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return DefaultGradeScale(), fmt.Errorf("decode score_rule: %w", err)
	}
	scale, err := NewGradeScale(rules)
	if err != nil {
		return DefaultGradeScale(), fmt.Errorf("decode score_rule: %w", err)
	}
	return scale, nil
}

// FormatScore 分数的展示形式：10、8.5
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// unwrapJSONString 去掉一层字符串编码。空值、null、空字符串返回 nil。
func unwrapJSONString(raw json.RawMessage) ([]byte, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] != '"' {
		return data, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return []byte(s), nil
}

// rawNumberString 接受 JSON 数字或数字字符串
func rawNumberString(raw json.RawMessage) (string, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", errors.New("value is missing")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func rawFloat(raw json.RawMessage) (float64, error) {
	s, err := rawNumberString(raw)
	if err != nil {
		return 0, err
	}
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
