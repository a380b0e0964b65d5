package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

const (
	// DefaultFormTitle 考核表未命名时的标题
	DefaultFormTitle = "员工评分表"
	// NoPermissionNotice 无权限区域的提示
	NoPermissionNotice = "(您没有权限评分此部分)"
	// ProductCriterionName 产品表现只有一个总体评分项
	ProductCriterionName = "产品/项目总体表现"
	// BonusTitle 超级管理员的额外加减分区域
	BonusTitle = "额外加减分"
)

var (
	// ErrNotMounted 组件未挂载时不处理事件
	ErrNotMounted = errors.New("form is not mounted")
	// ErrNoSuchTarget 事件目标不存在
	ErrNoSuchTarget = errors.New("event target not found")
)

// TableID 兼容后端返回数字或字符串形式的 id
type TableID string

func (id *TableID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TableID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TableID(n.String())
	return nil
}

// EvaluationTable 后端下发的考核表，score_rule 与 description 保持原始 JSON
type EvaluationTable struct {
	ID          TableID         `json:"id"`
	Name        string          `json:"name"`
	ScoreRule   json.RawMessage `json:"score_rule"`
	Description json.RawMessage `json:"description"`
}

// Context 表单渲染所需的全部输入
type Context struct {
	Table    EvaluationTable
	Employee Employee
	Viewer   Viewer
}

// Option 评级选项
type Option struct {
	Grade    string
	Score    float64
	Label    string
	Selected bool
}

// Row 一个评分项
type Row struct {
	Name    string
	Max     float64
	ShowMax bool
	Options []*Option // 评级模式
	Input   *Field    // 打分模式
}

// Selected 当前选中的评级
func (r *Row) Selected() *Option {
	for _, o := range r.Options {
		if o.Selected {
			return o
		}
	}
	return nil
}

// Section 一个维度的渲染结果
type Section struct {
	Dimension Dimension
	Title     string
	Mode      ScoringMode
	ShowMode  bool
	MaxScore  float64
	Disabled  bool
	Notice    string
	Rows      []*Row
}

// Row 按名称查找评分项
func (s *Section) Row(name string) *Row {
	for _, r := range s.Rows {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// BonusSection 额外加减分
type BonusSection struct {
	Score  *Field
	Reason *Field
}

// Form 评分表单组件。由注入的 Context 构造，Mount 后才响应事件。
type Form struct {
	ctx    Context
	logger *zap.Logger

	title    string
	scale    *GradeScale
	desc     Description
	sections map[Dimension]*Section
	bonus    *BonusSection

	handlers map[EventKind]func(Event) error
}

// NewForm 创建表单组件
func NewForm(ctx Context, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		ctx:      ctx,
		logger:   logger,
		sections: make(map[Dimension]*Section),
	}
}

func (f *Form) Context() Context         { return f.ctx }
func (f *Form) Title() string            { return f.title }
func (f *Form) Scale() *GradeScale       { return f.scale }
func (f *Form) Bonus() *BonusSection     { return f.bonus }
func (f *Form) Description() Description { return f.desc }

// Section 某维度的渲染结果；描述中没有该维度时返回 nil
func (f *Form) Section(dim Dimension) *Section {
	return f.sections[dim]
}

// Render 清空并重建所有区域，重复调用结果一致。
// score_rule 或 description 无法解析时记录日志并以降级数据继续渲染。
func (f *Form) Render() {
	f.title = f.ctx.Table.Name
	if f.title == "" {
		f.title = DefaultFormTitle
	}

	scale, err := ParseScoreRule(f.ctx.Table.ScoreRule)
	if err != nil {
		f.logger.Warn("解析评分规则失败，使用默认规则", zap.String("table_id", string(f.ctx.Table.ID)), zap.Error(err))
	}
	f.scale = scale

	desc, err := ParseDescription(f.ctx.Table.Description)
	if err != nil {
		f.logger.Error("解析description数据失败", zap.String("table_id", string(f.ctx.Table.ID)), zap.Error(err))
		desc = Description{}
	}
	f.desc = desc

	f.sections = make(map[Dimension]*Section, len(Dimensions))
	for _, dim := range Dimensions {
		spec, ok := desc[dim]
		if !ok || spec == nil {
			continue
		}
		f.sections[dim] = f.renderSection(dim, spec, CanScore(dim, f.ctx.Viewer, f.ctx.Employee))
	}

	f.bonus = nil
	if f.ctx.Viewer.IsSA {
		f.bonus = &BonusSection{
			Score:  NewNumberField(false),
			Reason: NewTextField(false),
		}
	}
}

func (f *Form) renderSection(dim Dimension, spec *SectionSpec, permitted bool) *Section {
	sec := &Section{
		Dimension: dim,
		Title:     dim.DisplayTitle(),
		Mode:      spec.Mode,
		ShowMode:  dim == Professional,
		MaxScore:  spec.MaxScore,
		Disabled:  !permitted,
	}
	if !permitted {
		sec.Notice = NoPermissionNotice
	}

	if dim == Product {
		sec.Mode = ModeScoring
		sec.Rows = []*Row{{
			Name:  ProductCriterionName,
			Max:   spec.MaxScore,
			Input: NewBoundedField(0, spec.MaxScore, !permitted),
		}}
		return sec
	}
	if dim == General {
		sec.Mode = ModeRating
	}

	sec.Rows = make([]*Row, 0, len(spec.Criteria))
	for _, c := range spec.Criteria {
		row := &Row{Name: c.Name, Max: c.Max}
		if sec.Mode == ModeScoring {
			row.ShowMax = true
			row.Input = NewBoundedField(0, c.Max, !permitted)
		} else {
			row.Options = f.ratingOptions()
		}
		sec.Rows = append(sec.Rows, row)
	}
	return sec
}

// ratingOptions 等级分数直接取自评分规则，不按评分项最高分折算
func (f *Form) ratingOptions() []*Option {
	grades := f.scale.Grades()
	opts := make([]*Option, 0, len(grades))
	for _, g := range grades {
		score, _ := f.scale.Score(g)
		opts = append(opts, &Option{
			Grade: g,
			Score: score,
			Label: fmt.Sprintf("%s (%s分)", g, FormatScore(score)),
		})
	}
	return opts
}

// Mount 挂载事件处理
func (f *Form) Mount() {
	f.handlers = map[EventKind]func(Event) error{
		EventClick:   f.onClick,
		EventFocus:   f.onFocus,
		EventInput:   f.onInput,
		EventBlur:    f.onCommit,
		EventKeyDown: f.onKeyDown,
	}
}

// Unmount 卸载事件处理
func (f *Form) Unmount() {
	f.handlers = nil
}

func (f *Form) Mounted() bool { return f.handlers != nil }

// Dispatch 分发一次用户事件
func (f *Form) Dispatch(ev Event) error {
	if f.handlers == nil {
		return ErrNotMounted
	}
	h, ok := f.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("unsupported event kind %q", ev.Kind)
	}
	return h(ev)
}

func (f *Form) onClick(ev Event) error {
	if ev.Target.Field != "" {
		return f.onFocus(ev)
	}
	sec, row, err := f.lookupRow(ev.Target)
	if err != nil {
		return err
	}
	if sec.Disabled {
		return ErrSectionDisabled
	}
	var picked *Option
	for _, o := range row.Options {
		if o.Grade == ev.Target.Grade {
			picked = o
		}
	}
	if picked == nil {
		return fmt.Errorf("%w: grade %q", ErrNoSuchTarget, ev.Target.Grade)
	}
	for _, o := range row.Options {
		o.Selected = o == picked
	}
	return nil
}

func (f *Form) onFocus(ev Event) error {
	field, err := f.lookupField(ev.Target)
	if err != nil {
		return err
	}
	return field.Activate()
}

func (f *Form) onInput(ev Event) error {
	field, err := f.lookupField(ev.Target)
	if err != nil {
		return err
	}
	return field.Input(ev.Value)
}

func (f *Form) onCommit(ev Event) error {
	field, err := f.lookupField(ev.Target)
	if err != nil {
		return err
	}
	return field.Commit()
}

func (f *Form) onKeyDown(ev Event) error {
	if ev.Key != KeyEnter {
		return nil
	}
	return f.onCommit(ev)
}

func (f *Form) lookupRow(t Target) (*Section, *Row, error) {
	sec := f.sections[t.Dimension]
	if sec == nil {
		return nil, nil, fmt.Errorf("%w: section %s", ErrNoSuchTarget, t.Dimension)
	}
	name := t.Criterion
	if t.Dimension == Product && name == "" {
		name = ProductCriterionName
	}
	row := sec.Row(name)
	if row == nil {
		return nil, nil, fmt.Errorf("%w: criterion %q", ErrNoSuchTarget, t.Criterion)
	}
	return sec, row, nil
}

func (f *Form) lookupField(t Target) (*Field, error) {
	switch t.Field {
	case FieldBonusScore, FieldBonusReason:
		if f.bonus == nil {
			return nil, fmt.Errorf("%w: bonus section", ErrNoSuchTarget)
		}
		if t.Field == FieldBonusScore {
			return f.bonus.Score, nil
		}
		return f.bonus.Reason, nil
	}
	_, row, err := f.lookupRow(t)
	if err != nil {
		return nil, err
	}
	if row.Input == nil {
		return nil, fmt.Errorf("%w: criterion %q has no input", ErrNoSuchTarget, row.Name)
	}
	return row.Input, nil
}

// Select 点击某个评级选项
func (f *Form) Select(dim Dimension, criterion, grade string) error {
	return f.Dispatch(Event{Kind: EventClick, Target: Target{Dimension: dim, Criterion: criterion, Grade: grade}})
}

// EnterScore 激活输入框、输入并失焦提交
func (f *Form) EnterScore(dim Dimension, criterion string, value float64) error {
	return f.enter(Target{Dimension: dim, Criterion: criterion, Field: FieldScore}, strconv.FormatFloat(value, 'f', -1, 64))
}

// EnterBonus 超级管理员填写额外加减分及原因
func (f *Form) EnterBonus(score float64, reason string) error {
	if err := f.enter(Target{Field: FieldBonusScore}, strconv.FormatFloat(score, 'f', -1, 64)); err != nil {
		return err
	}
	return f.enter(Target{Field: FieldBonusReason}, reason)
}

func (f *Form) enter(t Target, value string) error {
	if err := f.Dispatch(Event{Kind: EventFocus, Target: t}); err != nil {
		return err
	}
	if err := f.Dispatch(Event{Kind: EventInput, Target: t, Value: value}); err != nil {
		return err
	}
	return f.Dispatch(Event{Kind: EventBlur, Target: t})
}
