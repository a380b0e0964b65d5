package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 绩效仓库集合
type Repositories struct {
	Employee   *EmployeeRepository
	Credential *CredentialRepository
	Department *DepartmentRepository
	Table      *TableRepository
	Score      *ScoreRepository
}

// NewRepositories 创建绩效仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Employee:   NewEmployeeRepository(db),
		Credential: NewCredentialRepository(db),
		Department: NewDepartmentRepository(db),
		Table:      NewTableRepository(db),
		Score:      NewScoreRepository(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
