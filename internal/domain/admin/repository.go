package admin

import (
	"context"

	"gorm.io/gorm"
)

type OperatorRepository interface {
	Create(ctx context.Context, op *Operator) error
	FindByIDs(ctx context.Context, ids []string) ([]Operator, error)
	ListByRole(ctx context.Context, role string) ([]Operator, error)
}

type operatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, op *Operator) error {
	return r.db.WithContext(ctx).Create(op).Error
}

// FindByIDs returns the active operators among ids. Unknown ids are ignored.
func (r *operatorRepository) FindByIDs(ctx context.Context, ids []string) ([]Operator, error) {
	var ops []Operator
	if len(ids) == 0 {
		return ops, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}

func (r *operatorRepository) ListByRole(ctx context.Context, role string) ([]Operator, error) {
	var ops []Operator
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}
