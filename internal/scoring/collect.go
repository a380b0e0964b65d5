package scoring

import (
	"fmt"

	"go.uber.org/zap"
)

// ScoreItem 一个评分项的汇总结果，打分模式下没有 grade
type ScoreItem struct {
	Name  string  `json:"name"`
	Grade string  `json:"grade,omitempty"`
	Score float64 `json:"score"`
}

// ItemList 通用职能的提交形式
type ItemList []ScoreItem

// ProfessionalScores 专业职能的提交形式
type ProfessionalScores struct {
	Mode  ScoringMode `json:"mode"`
	Items ItemList    `json:"items"`
}

// Detail 评分细节，附带最高分和得分率
type Detail struct {
	Name       string  `json:"name"`
	MaxScore   float64 `json:"maxScore"`
	Grade      string  `json:"grade,omitempty"`
	Score      float64 `json:"score"`
	Percentage string  `json:"percentage"`
}

// DetailList 某维度的评分细节
type DetailList []Detail

// Percentage 得分率，保留两位小数；最高分为 0 时返回 "0%"
func Percentage(score, maxScore float64) string {
	if maxScore == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", score/maxScore*100)
}

// Collector 从表单当前状态读取评分。
// 每次读取都重新计算权限，无权限的维度返回 nil，不读取被禁用的区域。
type Collector struct {
	form   *Form
	logger *zap.Logger
}

// NewCollector 创建收集器
func NewCollector(form *Form) *Collector {
	return &Collector{form: form, logger: form.logger}
}

// section 有权限时返回区域；有权限但描述中没有该维度时返回 (nil, true)
func (c *Collector) section(dim Dimension) (*Section, bool) {
	ctx := c.form.ctx
	if !CanScore(dim, ctx.Viewer, ctx.Employee) {
		return nil, false
	}
	sec := c.form.sections[dim]
	if sec != nil && sec.Disabled {
		return nil, false
	}
	return sec, true
}

// Professional 专业职能评分
func (c *Collector) Professional() *ProfessionalScores {
	sec, ok := c.section(Professional)
	if !ok {
		return nil
	}
	if sec == nil {
		return &ProfessionalScores{Mode: ModeRating, Items: ItemList{}}
	}
	if sec.Mode == ModeScoring {
		return &ProfessionalScores{Mode: ModeScoring, Items: c.scoredItems(sec)}
	}
	return &ProfessionalScores{Mode: ModeRating, Items: c.ratedItems(sec)}
}

// General 通用职能评分
func (c *Collector) General() *ItemList {
	sec, ok := c.section(General)
	if !ok {
		return nil
	}
	items := ItemList{}
	if sec != nil {
		items = c.ratedItems(sec)
	}
	return &items
}

// Product 产品表现分数；无权限或未填写时返回 nil
func (c *Collector) Product() *float64 {
	sec, ok := c.section(Product)
	if !ok || sec == nil || len(sec.Rows) == 0 || sec.Rows[0].Input == nil {
		return nil
	}
	v, ok := sec.Rows[0].Input.Number()
	if !ok {
		return nil
	}
	return &v
}

// ProfessionalDetails 专业职能评分细节
func (c *Collector) ProfessionalDetails() *DetailList {
	return c.details(Professional)
}

// GeneralDetails 通用职能评分细节
func (c *Collector) GeneralDetails() *DetailList {
	return c.details(General)
}

func (c *Collector) details(dim Dimension) *DetailList {
	sec, ok := c.section(dim)
	if !ok {
		return nil
	}
	out := DetailList{}
	if sec == nil {
		return &out
	}
	for _, row := range sec.Rows {
		if sec.Mode == ModeScoring {
			if row.Input == nil {
				continue
			}
			v, ok := row.Input.Number()
			if !ok {
				continue
			}
			out = append(out, Detail{Name: row.Name, MaxScore: row.Max, Score: v, Percentage: Percentage(v, row.Max)})
			continue
		}
		opt := row.Selected()
		if opt == nil {
			continue
		}
		out = append(out, Detail{
			Name:       row.Name,
			MaxScore:   row.Max,
			Grade:      opt.Grade,
			Score:      opt.Score,
			Percentage: Percentage(opt.Score, row.Max),
		})
	}
	return &out
}

func (c *Collector) ratedItems(sec *Section) ItemList {
	items := ItemList{}
	for _, row := range sec.Rows {
		opt := row.Selected()
		if opt == nil {
			c.logger.Warn("评分项未选择评级",
				zap.String("dimension", sec.Dimension.String()),
				zap.String("criterion", row.Name),
			)
			continue
		}
		items = append(items, ScoreItem{Name: row.Name, Grade: opt.Grade, Score: opt.Score})
	}
	return items
}

func (c *Collector) scoredItems(sec *Section) ItemList {
	items := ItemList{}
	for _, row := range sec.Rows {
		if row.Input == nil {
			continue
		}
		v, ok := row.Input.Number()
		if !ok {
			continue
		}
		items = append(items, ScoreItem{Name: row.Name, Score: v})
	}
	return items
}
