package scoring

import "strings"

// ExtraBonus 超级管理员的额外加减分，未填写时两个字段均为 null
type ExtraBonus struct {
	Score  *float64 `json:"score"`
	Reason *string  `json:"reason"`
}

// Details 评分细节，只包含有权限的维度
type Details struct {
	Professional *DetailList `json:"professional,omitempty"`
	General      *DetailList `json:"general,omitempty"`
}

// Submission 提交给后端的评分数据。
// 维度字段缺失表示当前评分人未对该维度评分，而不是 0 分。
type Submission struct {
	EmpID        string              `json:"emp_id" validate:"required,emp_id"`
	TableID      TableID             `json:"table_id" validate:"required"`
	Professional *ProfessionalScores `json:"professional,omitempty"`
	General      *ItemList           `json:"general,omitempty"`
	Product      *float64            `json:"product,omitempty"`
	Details      *Details            `json:"details,omitempty"`
	ExtraBonus   ExtraBonus          `json:"extraBonus"`
}

// Assemble 合并各维度收集结果、额外加减分与标识，生成最终提交数据
func Assemble(form *Form, empID, tableID string) *Submission {
	c := NewCollector(form)
	sub := &Submission{
		EmpID:        empID,
		TableID:      TableID(tableID),
		Professional: c.Professional(),
		General:      c.General(),
		Product:      c.Product(),
	}

	pd, gd := c.ProfessionalDetails(), c.GeneralDetails()
	if pd != nil || gd != nil {
		sub.Details = &Details{Professional: pd, General: gd}
	}

	if form.ctx.Viewer.IsSA && form.bonus != nil {
		if v, ok := form.bonus.Score.Number(); ok {
			reason := strings.TrimSpace(form.bonus.Reason.Raw())
			sub.ExtraBonus = ExtraBonus{Score: &v, Reason: &reason}
		}
	}
	return sub
}

// DimensionTotal 某维度的得分合计；未评分返回 false
func (s *Submission) DimensionTotal(dim Dimension) (float64, bool) {
	switch dim {
	case Professional:
		if s.Professional == nil {
			return 0, false
		}
		return sumItems(s.Professional.Items), true
	case General:
		if s.General == nil {
			return 0, false
		}
		return sumItems(*s.General), true
	case Product:
		if s.Product == nil {
			return 0, false
		}
		return *s.Product, true
	}
	return 0, false
}

// Total 各维度得分与额外加减分之和
func (s *Submission) Total() float64 {
	var total float64
	for _, dim := range Dimensions {
		if v, ok := s.DimensionTotal(dim); ok {
			total += v
		}
	}
	if s.ExtraBonus.Score != nil {
		total += *s.ExtraBonus.Score
	}
	return total
}

// Has 提交中是否包含某维度
func (s *Submission) Has(dim Dimension) bool {
	_, ok := s.DimensionTotal(dim)
	return ok
}

func sumItems(items ItemList) float64 {
	var total float64
	for _, it := range items {
		total += it.Score
	}
	return total
}
