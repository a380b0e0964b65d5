package repository

import (
	"context"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"gorm.io/gorm"
)

// CredentialRepository 登录凭证仓库
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByUsername 根据用户名查找凭证
func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*entity.Credential, error) {
	var cred entity.Credential
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&cred).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cred, nil
}

// UpdatePassword 更新密码哈希
func (r *CredentialRepository) UpdatePassword(ctx context.Context, username, hash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Credential{}).
		Where("username = ?", username).
		Update("password_hash", hash).Error
}
