package repository

import (
	"context"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"gorm.io/gorm"
)

// TableSummary 考核表列表项
type TableSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TableRepository 考核表仓库
type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

// List 考核表列表，最新发布的在前
func (r *TableRepository) List(ctx context.Context) ([]TableSummary, error) {
	var items []TableSummary
	err := r.db.WithContext(ctx).
		Model(&entity.EvaluationTable{}).
		Select("id, name").
		Order("id DESC").
		Scan(&items).Error
	return items, err
}

// FindByID 根据ID查找考核表
func (r *TableRepository) FindByID(ctx context.Context, id uint) (*entity.EvaluationTable, error) {
	var table entity.EvaluationTable
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &table, nil
}

// Create 发布考核表
func (r *TableRepository) Create(ctx context.Context, table *entity.EvaluationTable) error {
	return r.db.WithContext(ctx).Create(table).Error
}
