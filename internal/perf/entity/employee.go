package entity

import (
	"time"

	"github.com/bitfantasy/perfeval/internal/scoring"
)

// Employee 员工
type Employee struct {
	EmpID           string `json:"emp_id" gorm:"column:emp_id;primaryKey;size:20" validate:"required,emp_id"`
	EmpName         string `json:"emp_name" gorm:"column:emp_name;size:50;not null" validate:"required,max=50"`
	Position        string `json:"position" gorm:"size:100;not null" validate:"required,max=100"`
	Department      string `json:"department" gorm:"size:100;not null;index" validate:"required,max=100"`
	IsSA            bool   `json:"isSA" gorm:"column:is_sa;not null;default:false"`
	IsRJ            bool   `json:"isRJ" gorm:"column:is_rj;not null;default:false"`
	IsPJ            bool   `json:"isPJ" gorm:"column:is_pj;not null;default:false"`
	ImmediateLeader string `json:"immediate_leader" gorm:"column:immediate_leader;size:20;index" validate:"omitempty,emp_id"`
	DirectJudgeID   string `json:"directJudgeId" gorm:"column:direct_judge_id;size:50;index" validate:"omitempty,emp_id"`
	TopLeader       string `json:"top_leader" gorm:"column:top_leader;size:20" validate:"omitempty,emp_id"`
	ProductGroup    string `json:"ProductGroup" gorm:"column:product_group;size:100"`
	IsManage        bool   `json:"ismanage" gorm:"column:is_manage;default:false"`
	DepartmentID    *int   `json:"departmentid" gorm:"column:department_id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Employee) TableName() string {
	return "users"
}

// Viewer 以评分人身份使用
func (e *Employee) Viewer() scoring.Viewer {
	return scoring.Viewer{EmpID: e.EmpID, IsSA: e.IsSA, IsRJ: e.IsRJ, IsPJ: e.IsPJ}
}

// Scored 以被评分员工身份使用
func (e *Employee) Scored() scoring.Employee {
	return scoring.Employee{
		EmpID:           e.EmpID,
		EmpName:         e.EmpName,
		Department:      e.Department,
		Position:        e.Position,
		ImmediateLeader: e.ImmediateLeader,
		DirectJudgeID:   e.DirectJudgeID,
	}
}

// Credential 登录凭证
type Credential struct {
	Username     string    `json:"username" gorm:"primaryKey;size:50"`
	EmpID        string    `json:"emp_id" gorm:"column:emp_id;size:20;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:72;not null"`
	UpdatedAt    time.Time `json:"-"`
}

func (Credential) TableName() string {
	return "user_credentials"
}

// Department 部门
type Department struct {
	ID            int     `json:"id" gorm:"primaryKey"`
	Name          string  `json:"name" gorm:"size:100;not null"`
	AvgAttendance float64 `json:"avgattendance" gorm:"column:avgattendance;not null;default:0"`
}

func (Department) TableName() string {
	return "department"
}
