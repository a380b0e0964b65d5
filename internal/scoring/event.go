package scoring

// EventKind 用户交互事件类型
type EventKind string

const (
	EventClick   EventKind = "click"
	EventFocus   EventKind = "focus"
	EventInput   EventKind = "input"
	EventBlur    EventKind = "blur"
	EventKeyDown EventKind = "keydown"
)

// KeyEnter 回车键提交编辑
const KeyEnter = "Enter"

// FieldName 输入框标识
type FieldName string

const (
	FieldScore       FieldName = "score"
	FieldBonusScore  FieldName = "bonus_score"
	FieldBonusReason FieldName = "bonus_reason"
)

// Target 事件作用的控件。
// 评级选项：Dimension + Criterion + Grade；分数输入：Dimension + Criterion + Field=score；
// 额外加减分：Field=bonus_score / bonus_reason。
type Target struct {
	Dimension Dimension
	Criterion string
	Grade     string
	Field     FieldName
}

// Event 一次用户交互
type Event struct {
	Kind   EventKind
	Target Target
	Value  string
	Key    string
}
