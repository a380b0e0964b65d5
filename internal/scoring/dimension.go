package scoring

import (
	"errors"
	"fmt"
)

// ErrUnknownDimension 描述文档中出现无法识别的考核维度
var ErrUnknownDimension = errors.New("unknown evaluation dimension")

// Dimension 考核维度（固定三类，不可扩展）
type Dimension int

const (
	Professional Dimension = iota + 1 // 专业职能
	General                           // 通用职能
	Product                           // 产品表现
)

// Dimensions 渲染与收集的固定顺序
var Dimensions = []Dimension{Professional, General, Product}

// Title 描述文档中的键名
func (d Dimension) Title() string {
	switch d {
	case Professional:
		return "专业职能"
	case General:
		return "通用职能"
	case Product:
		return "产品表现"
	}
	return ""
}

// DisplayTitle 页面上展示的标题
func (d Dimension) DisplayTitle() string {
	if d == Product {
		return "产品/项目表现"
	}
	return d.Title()
}

// Key 提交数据中的字段名
func (d Dimension) Key() string {
	switch d {
	case Professional:
		return "professional"
	case General:
		return "general"
	case Product:
		return "product"
	}
	return ""
}

func (d Dimension) String() string {
	if k := d.Key(); k != "" {
		return k
	}
	return fmt.Sprintf("Dimension(%d)", int(d))
}

// ParseDimension 将描述文档中的标题映射为维度
func ParseDimension(title string) (Dimension, error) {
	for _, d := range Dimensions {
		if d.Title() == title {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, title)
}

// ScoringMode 评分方式
type ScoringMode string

const (
	ModeRating  ScoringMode = "评级"
	ModeScoring ScoringMode = "打分"
)

// ParseMode 只有明确的"打分"才是打分模式，其余一律按评级处理
func ParseMode(s string) ScoringMode {
	if ScoringMode(s) == ModeScoring {
		return ModeScoring
	}
	return ModeRating
}
