package reminder

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"travelagency/internal/pkg/dberrors"
)

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create maps a unique violation on booking_id to ErrAlreadyExists.
func (r *gormRepository) Create(ctx context.Context, rem *AdminReminder) error {
	err := r.db.WithContext(ctx).Create(rem).Error
	if dberrors.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *gormRepository) GetByBookingID(ctx context.Context, bookingID string) (*AdminReminder, error) {
	var rem AdminReminder
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&rem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *gormRepository) ListUnread(ctx context.Context) ([]AdminReminder, error) {
	var list []AdminReminder
	err := r.db.WithContext(ctx).
		Where("is_read = ?", false).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *gormRepository) List(ctx context.Context, limit, offset int) ([]AdminReminder, int64, error) {
	var list []AdminReminder
	var total int64

	q := r.db.WithContext(ctx).Model(&AdminReminder{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *gormRepository) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&AdminReminder{}).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

// MarkRead keeps the first ReadAt when the reminder was already read.
func (r *gormRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*AdminReminder, error) {
	var rem AdminReminder
	if err := r.db.WithContext(ctx).First(&rem, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rem.IsRead {
		return &rem, nil
	}

	err := r.db.WithContext(ctx).Model(&rem).Updates(map[string]any{
		"is_read": true,
		"read_at": at,
	}).Error
	if err != nil {
		return nil, err
	}
	rem.IsRead = true
	rem.ReadAt = &at
	return &rem, nil
}

func (r *gormRepository) MarkAllRead(ctx context.Context, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&AdminReminder{}).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
