package repository

import (
	"context"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"gorm.io/gorm"
)

// ScoreRepository 评分记录仓库
type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create 保存评分记录
func (r *ScoreRepository) Create(ctx context.Context, record *entity.ScoreRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByEmployee 查询员工的评分历史
func (r *ScoreRepository) FindByEmployee(ctx context.Context, empID string) ([]entity.ScoreRecord, error) {
	var items []entity.ScoreRecord
	err := r.db.WithContext(ctx).
		Where("emp_id = ?", empID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindLatest 每个评分人对每个员工、每张考核表的最新记录。
// 不同评分人只提交各自有权限的维度，因此按评分人分别保留。
func (r *ScoreRepository) FindLatest(ctx context.Context) ([]entity.ScoreRecord, error) {
	var items []entity.ScoreRecord
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (emp_id, table_id, scorer_id) * FROM score_records
			ORDER BY emp_id, table_id, scorer_id, created_at DESC`).
		Scan(&items).Error
	return items, err
}
