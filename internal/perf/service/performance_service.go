package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/repository"
	"github.com/xuri/excelize/v2"
)

// PerformancePageSize 绩效查询每页条数
const PerformancePageSize = 20

// PerformanceService 绩效查询服务
type PerformanceService struct {
	employees *repository.EmployeeRepository
	scores    *repository.ScoreRepository
	tables    *repository.TableRepository
}

func NewPerformanceService(employees *repository.EmployeeRepository, scores *repository.ScoreRepository, tables *repository.TableRepository) *PerformanceService {
	return &PerformanceService{employees: employees, scores: scores, tables: tables}
}

// SearchRequest 绩效查询条件，空字段忽略
type SearchRequest struct {
	Department   string `json:"department"`
	DirectLeader string `json:"directLeader"`
	TopLeader    string `json:"topLeader"`
	Name         string `json:"name"`
	EmployeeID   string `json:"employeeId"`
}

// Search 按条件查询
func (s *PerformanceService) Search(ctx context.Context, req *SearchRequest) ([]entity.PerformanceRow, error) {
	items, err := s.employees.Search(ctx, map[string]string{
		"department":    req.Department,
		"direct_leader": req.DirectLeader,
		"top_leader":    req.TopLeader,
		"name":          req.Name,
		"emp_id":        req.EmployeeID,
	})
	if err != nil {
		return nil, err
	}
	return toRows(items), nil
}

// Page 分页查询，page 从 1 开始
func (s *PerformanceService) Page(ctx context.Context, page int) ([]entity.PerformanceRow, int64, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.employees.FindPage(ctx, page, PerformancePageSize)
	if err != nil {
		return nil, 0, err
	}
	return toRows(items), total, nil
}

func toRows(items []entity.Employee) []entity.PerformanceRow {
	rows := make([]entity.PerformanceRow, 0, len(items))
	for _, e := range items {
		rows = append(rows, entity.PerformanceRow{
			Name:         e.EmpName,
			EmployeeID:   e.EmpID,
			Department:   e.Department,
			Position:     e.Position,
			DirectLeader: e.ImmediateLeader,
			TopLeader:    e.TopLeader,
		})
	}
	return rows
}

var performanceExportHeaders = []string{
	"工号", "姓名", "部门", "考核表", "专业职能", "通用职能", "产品表现",
	"额外加减分", "加减分原因", "总分", "评分人", "提交时间",
}

// ScoreSummary 员工在一张考核表上的合并成绩，每个维度取最近一次提交了该维度的记录
type ScoreSummary struct {
	EmpID        string
	TableID      uint
	Professional *float64
	General      *float64
	Product      *float64
	ExtraBonus   *float64
	BonusReason  string
	Scorers      []string
	UpdatedAt    time.Time
}

// Total 已评分维度与额外加减分之和
func (s *ScoreSummary) Total() float64 {
	var total float64
	for _, v := range []*float64{s.Professional, s.General, s.Product, s.ExtraBonus} {
		if v != nil {
			total += *v
		}
	}
	return total
}

// MergeScores 按员工和考核表合并各评分人的记录
func MergeScores(records []entity.ScoreRecord) []ScoreSummary {
	sorted := make([]entity.ScoreRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.EmpID != b.EmpID {
			return a.EmpID < b.EmpID
		}
		if a.TableID != b.TableID {
			return a.TableID < b.TableID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	var out []ScoreSummary
	for _, r := range sorted {
		n := len(out)
		if n == 0 || out[n-1].EmpID != r.EmpID || out[n-1].TableID != r.TableID {
			out = append(out, ScoreSummary{EmpID: r.EmpID, TableID: r.TableID, UpdatedAt: r.CreatedAt})
			n++
		}
		sum := &out[n-1]
		// 同组内按时间倒序，先到的非空值即为最新
		keepFirst(&sum.Professional, r.Professional)
		keepFirst(&sum.General, r.General)
		keepFirst(&sum.Product, r.Product)
		if sum.ExtraBonus == nil && r.ExtraBonus != nil {
			sum.ExtraBonus = r.ExtraBonus
			sum.BonusReason = r.BonusReason
		}
		sum.Scorers = append(sum.Scorers, r.ScorerID)
	}
	return out
}

func keepFirst(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		*dst = v
	}
}

// Export 导出每个员工在每张考核表上的成绩，合并各评分人最新提交的维度
func (s *PerformanceService) Export(ctx context.Context) (*excelize.File, string, error) {
	records, err := s.scores.FindLatest(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list scores: %w", err)
	}
	summaries := MergeScores(records)
	employees, err := s.employees.FindAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list employees: %w", err)
	}
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list tables: %w", err)
	}

	empByID := make(map[string]entity.Employee, len(employees))
	for _, e := range employees {
		empByID[e.EmpID] = e
	}
	tableNames := make(map[uint]string, len(tables))
	for _, t := range tables {
		tableNames[t.ID] = t.Name
	}

	f := excelize.NewFile()
	sheet := "绩效"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range performanceExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for i, r := range summaries {
		row := i + 2
		emp := empByID[r.EmpID]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.EmpID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), emp.EmpName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), emp.Department)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), tableNames[r.TableID])
		setOptional(f, sheet, fmt.Sprintf("E%d", row), r.Professional)
		setOptional(f, sheet, fmt.Sprintf("F%d", row), r.General)
		setOptional(f, sheet, fmt.Sprintf("G%d", row), r.Product)
		setOptional(f, sheet, fmt.Sprintf("H%d", row), r.ExtraBonus)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), r.BonusReason)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), r.Total())
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), strings.Join(r.Scorers, ","))
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), r.UpdatedAt.Format("2006-01-02 15:04"))
	}

	colWidths := []float64{12, 10, 14, 20, 10, 10, 10, 10, 24, 8, 12, 18}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("绩效_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

func setOptional(f *excelize.File, sheet, cell string, v *float64) {
	if v != nil {
		f.SetCellValue(sheet, cell, *v)
	}
}
