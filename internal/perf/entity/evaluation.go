package entity

import (
	"time"
)

// EvaluationTable 考核表
type EvaluationTable struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	Name               string `json:"name" gorm:"size:200;not null"`
	Period             string `json:"period" gorm:"size:50"`        // e.g. 2026-Q1
	ScoreRule          string `json:"score_rule" gorm:"type:text"`  // 评级规则 JSON
	Description        string `json:"description" gorm:"type:text"` // 维度描述 JSON
	Criteria           string `json:"criteria" gorm:"type:text"`
	AttendanceRules    string `json:"attendance_rules" gorm:"type:text"`
	ForcedDistribution bool   `json:"forced_distribution" gorm:"default:false"`
	CreatedBy          string `json:"created_by" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EvaluationTable) TableName() string {
	return "evaluation_tables"
}

// ScoreRecord 一次评分提交
type ScoreRecord struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	EmpID    string `json:"emp_id" gorm:"column:emp_id;size:20;not null;index"`
	TableID  uint   `json:"table_id" gorm:"not null;index"`
	ScorerID string `json:"scorer_id" gorm:"size:20;not null"`

	// 各维度合计，未评分为空
	Professional *float64 `json:"professional" gorm:"type:decimal(8,2)"`
	General      *float64 `json:"general" gorm:"type:decimal(8,2)"`
	Product      *float64 `json:"product" gorm:"type:decimal(8,2)"`
	ExtraBonus   *float64 `json:"extra_bonus" gorm:"type:decimal(8,2)"`
	BonusReason  string   `json:"bonus_reason" gorm:"size:500"`
	Total        float64  `json:"total" gorm:"type:decimal(8,2)"`

	Payload string `json:"payload" gorm:"type:text"` // 原始提交 JSON

	CreatedAt time.Time `json:"created_at"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}

// PerformanceRow 绩效查询结果行
type PerformanceRow struct {
	Name         string `json:"name"`
	EmployeeID   string `json:"employeeId"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	DirectLeader string `json:"directLeader"`
	TopLeader    string `json:"topLeader"`
}

// All 需要迁移的实体
func All() []interface{} {
	return []interface{}{
		&Department{},
		&Employee{},
		&Credential{},
		&EvaluationTable{},
		&ScoreRecord{},
	}
}
