package repository

import (
	"context"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"gorm.io/gorm"
)

// DepartmentRepository 部门仓库
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindAll 查询全部部门
func (r *DepartmentRepository) FindAll(ctx context.Context) ([]entity.Department, error) {
	var items []entity.Department
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}
