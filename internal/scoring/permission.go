package scoring

// Viewer 当前登录的评分人
type Viewer struct {
	EmpID string `json:"emp_id"`
	IsSA  bool   `json:"isSA"` // 超级管理员
	IsRJ  bool   `json:"isRJ"` // 直属领导评委
	IsPJ  bool   `json:"isPJ"` // 产品评委
}

// Employee 被评分员工
type Employee struct {
	EmpID           string `json:"emp_id"`
	EmpName         string `json:"emp_name"`
	Department      string `json:"department"`
	Position        string `json:"position"`
	ImmediateLeader string `json:"immediate_leader"`
	DirectJudgeID   string `json:"directJudgeId"`
}

// CanScore 当前评分人能否为该员工的某一维度打分。
// 纯函数，每次渲染、收集都重新计算，不做缓存。
func CanScore(dim Dimension, viewer Viewer, employee Employee) bool {
	if viewer.IsSA {
		return true
	}
	if viewer.EmpID == "" {
		return false
	}
	switch dim {
	case Professional, General:
		return viewer.IsRJ && employee.ImmediateLeader == viewer.EmpID
	case Product:
		return viewer.IsPJ && employee.DirectJudgeID == viewer.EmpID
	}
	return false
}
