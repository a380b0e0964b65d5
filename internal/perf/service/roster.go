package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/validation"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// RosterRow 花名册中的一行
type RosterRow struct {
	Line     int
	Employee *entity.Employee
	Err      error
}

// rosterHeaders 表头别名到字段
var rosterHeaders = map[string]string{
	"工号": "emp_id", "emp_id": "emp_id",
	"姓名": "emp_name", "emp_name": "emp_name",
	"职位": "position", "position": "position",
	"部门": "department", "department": "department",
	"部门ID": "department_id", "departmentid": "department_id",
	"直属领导": "immediate_leader", "immediate_leader": "immediate_leader",
	"产品评委": "direct_judge_id", "directjudgeid": "direct_judge_id",
	"上级领导": "top_leader", "top_leader": "top_leader",
	"产品组": "product_group", "productgroup": "product_group",
	"是否管理岗": "is_manage", "ismanage": "is_manage",
	"超级管理员": "is_sa", "issa": "is_sa",
	"直属评分人": "is_rj", "isrj": "is_rj",
	"产品评分人": "is_pj", "ispj": "is_pj",
}

var requiredRosterFields = []string{"emp_id", "emp_name", "position", "department"}

// ParseRoster 解析 .xlsx 或 .csv 花名册，csv 支持 UTF-8 与 GBK
func ParseRoster(filename string, r io.Reader) ([]RosterRow, error) {
	var records [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: 无法读取 Excel 文件", ErrInvalidInput)
		}
		defer f.Close()
		records, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read excel: %w", err)
		}
	case ".csv":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records, err = readCSV(data)
		if err != nil {
			return nil, fmt.Errorf("%w: csv 格式错误", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: 仅支持 .xlsx 和 .csv 文件", ErrInvalidInput)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: 文件为空", ErrInvalidInput)
	}

	columns := map[string]int{}
	for i, h := range records[0] {
		key := strings.TrimSpace(h)
		if field, ok := rosterHeaders[key]; ok {
			columns[field] = i
		} else if field, ok := rosterHeaders[strings.ToLower(key)]; ok {
			columns[field] = i
		}
	}
	for _, field := range requiredRosterFields {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("%w: 缺少列 %s", ErrInvalidInput, field)
		}
	}

	var rows []RosterRow
	for i, record := range records[1:] {
		line := i + 2
		if isBlankRecord(record) {
			continue
		}
		emp, err := rosterEmployee(columns, record)
		rows = append(rows, RosterRow{Line: line, Employee: emp, Err: err})
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var reader io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// GBK → UTF-8
		reader = transform.NewReader(reader, simplifiedchinese.GBK.NewDecoder())
	}
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rosterEmployee(columns map[string]int, record []string) (*entity.Employee, error) {
	get := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return validation.SanitizeText(record[i])
	}

	emp := &entity.Employee{
		EmpID:           get("emp_id"),
		EmpName:         get("emp_name"),
		Position:        get("position"),
		Department:      get("department"),
		ImmediateLeader: get("immediate_leader"),
		DirectJudgeID:   get("direct_judge_id"),
		TopLeader:       get("top_leader"),
		ProductGroup:    get("product_group"),
		IsManage:        parseFlag(get("is_manage")),
		IsSA:            parseFlag(get("is_sa")),
		IsRJ:            parseFlag(get("is_rj")),
		IsPJ:            parseFlag(get("is_pj")),
	}

	if err := validation.Validate(emp); err != nil {
		return nil, fmt.Errorf("员工数据无效: %s", validation.Describe(err))
	}
	if v := get("department_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("部门ID无效: %q", v)
		}
		emp.DepartmentID = &id
	}
	return emp, nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(v) {
	case "是", "1", "true", "y", "yes":
		return true
	}
	return false
}
