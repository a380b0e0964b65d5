package scoring

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSectionDisabled 无权限的区域不接受任何修改
	ErrSectionDisabled = errors.New("section is disabled for the current viewer")
	// ErrNotEditing 字段未处于编辑状态
	ErrNotEditing = errors.New("field is not being edited")
	// ErrInvalidNumber 提交时数值无法解析
	ErrInvalidNumber = errors.New("value is not a number")
)

// FieldState 可编辑字段的状态
type FieldState int

const (
	Viewing FieldState = iota
	Editing
)

func (s FieldState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Field 页面上的输入框。Viewing→Editing 由激活触发，Editing→Viewing 由失焦或回车提交触发，
// 数值校验只在提交时进行；有边界的数值字段在每次输入时立即截断到 [min, max]。
type Field struct {
	numeric  bool
	bounded  bool
	min, max float64
	disabled bool

	state FieldState
	value string
}

// NewBoundedField 取值范围为 [min, max] 的数值输入
func NewBoundedField(min, max float64, disabled bool) *Field {
	return &Field{numeric: true, bounded: true, min: min, max: max, disabled: disabled}
}

// NewNumberField 不限范围、可正可负的数值输入
func NewNumberField(disabled bool) *Field {
	return &Field{numeric: true, disabled: disabled}
}

// NewTextField 自由文本
func NewTextField(disabled bool) *Field {
	return &Field{disabled: disabled}
}

func (f *Field) State() FieldState { return f.state }
func (f *Field) Disabled() bool    { return f.disabled }
func (f *Field) Raw() string       { return f.value }

// Bounds 数值上下限，无边界时 ok 为 false
func (f *Field) Bounds() (min, max float64, ok bool) {
	return f.min, f.max, f.bounded
}

// Activate 进入编辑状态
func (f *Field) Activate() error {
	if f.disabled {
		return ErrSectionDisabled
	}
	f.state = Editing
	return nil
}

// Input 编辑中的一次输入
func (f *Field) Input(raw string) error {
	if f.disabled {
		return ErrSectionDisabled
	}
	if f.state != Editing {
		return ErrNotEditing
	}
	f.value = f.clamp(raw)
	return nil
}

// Commit 提交编辑并回到查看状态
func (f *Field) Commit() error {
	if f.state != Editing {
		return ErrNotEditing
	}
	f.state = Viewing
	f.value = strings.TrimSpace(f.value)
	if !f.numeric || f.value == "" {
		return nil
	}
	v, ok := parseNumber(f.value)
	if !ok {
		f.value = ""
		return ErrInvalidNumber
	}
	f.value = FormatScore(f.clampValue(v))
	return nil
}

// Number 已提交的数值；空值返回 false
func (f *Field) Number() (float64, bool) {
	if !f.numeric || f.value == "" {
		return 0, false
	}
	return parseNumber(f.value)
}

// clamp 尚未输入完整的内容（如单个负号）原样保留，留到提交时校验
func (f *Field) clamp(raw string) string {
	if !f.numeric || !f.bounded {
		return raw
	}
	v, ok := parseNumber(strings.TrimSpace(raw))
	if !ok {
		return raw
	}
	if v > f.max || v < f.min {
		return FormatScore(f.clampValue(v))
	}
	return raw
}

func (f *Field) clampValue(v float64) float64 {
	if !f.bounded {
		return v
	}
	if v > f.max {
		return f.max
	}
	if v < f.min {
		return f.min
	}
	return v
}

// parseNumber 只接受有限数值，NaN 与 Inf 视为无法解析
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
