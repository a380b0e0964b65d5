package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"gorm.io/gorm"
)

// EmployeeRepository 员工仓库
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByID 根据工号查找员工
func (r *EmployeeRepository) FindByID(ctx context.Context, empID string) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.WithContext(ctx).Where("emp_id = ?", empID).First(&emp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &emp, nil
}

// FindByJudge 查询评分人负责的员工（产品评委或直属领导）
func (r *EmployeeRepository) FindByJudge(ctx context.Context, judgeID string) ([]entity.Employee, error) {
	var items []entity.Employee
	err := r.db.WithContext(ctx).
		Where("direct_judge_id = ? OR immediate_leader = ?", judgeID, judgeID).
		Order("emp_id").
		Find(&items).Error
	return items, err
}

// FindAll 查询全部员工
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]entity.Employee, error) {
	var items []entity.Employee
	err := r.db.WithContext(ctx).Order("emp_id").Find(&items).Error
	return items, err
}

// 姓名按字面匹配，通配符需转义
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search 按条件查询员工，空条件忽略
func (r *EmployeeRepository) Search(ctx context.Context, filters map[string]string) ([]entity.Employee, error) {
	var items []entity.Employee
	query := r.db.WithContext(ctx).Model(&entity.Employee{})

	if department := filters["department"]; department != "" {
		query = query.Where("department = ?", department)
	}
	if leader := filters["direct_leader"]; leader != "" {
		query = query.Where("immediate_leader = ?", leader)
	}
	if top := filters["top_leader"]; top != "" {
		query = query.Where("top_leader = ?", top)
	}
	if name := filters["name"]; name != "" {
		query = query.Where(`emp_name LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(name)+"%")
	}
	if empID := filters["emp_id"]; empID != "" {
		query = query.Where("emp_id = ?", empID)
	}

	err := query.Order("emp_id").Find(&items).Error
	return items, err
}

// FindPage 分页查询员工
func (r *EmployeeRepository) FindPage(ctx context.Context, page, pageSize int) ([]entity.Employee, int64, error) {
	var items []entity.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Employee{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("emp_id").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// Upsert 按工号新建或更新员工，返回是否为新建
func (r *EmployeeRepository) Upsert(ctx context.Context, emp *entity.Employee) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.Employee
		err := tx.Where("emp_id = ?", emp.EmpID).First(&existing).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			created = true
			return tx.Create(emp).Error
		}
		emp.CreatedAt = existing.CreatedAt
		return tx.Save(emp).Error
	})
	return created, err
}
