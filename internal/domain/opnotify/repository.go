package opnotify

import (
	"context"
	"errors"
	"strings"
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

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applySearch matches search literally; LIKE wildcards in it are escaped.
func applySearch(q *gorm.DB, search string) *gorm.DB {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return q
	}
	like := "%" + likeEscaper.Replace(search) + "%"
	return q.Where(`(LOWER(message) LIKE ? ESCAPE '\' OR LOWER(action) LIKE ? ESCAPE '\' OR LOWER(CAST(sections AS TEXT)) LIKE ? ESCAPE '\')`, like, like, like)
}

func (r *gormRepository) CreateAdminFacing(ctx context.Context, list []*AdminNotification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&list).Error
}

func (r *gormRepository) GetAdminFacing(ctx context.Context, id int64) (*AdminNotification, error) {
	var n AdminNotification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// MarkAdminFacingDone only moves pending records; done_at keeps its first value.
func (r *gormRepository) MarkAdminFacingDone(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&AdminNotification{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{"status": StatusDone, "done_at": at}).Error
}

// MarkAdminFacingForwarded keeps the first forwarded_at.
func (r *gormRepository) MarkAdminFacingForwarded(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&AdminNotification{}).
		Where("id = ? AND forwarded_at IS NULL", id).
		Update("forwarded_at", at).Error
}

func (r *gormRepository) DeleteAdminFacing(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&AdminNotification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) ListAdminFacing(ctx context.Context, q Query) ([]AdminNotification, error) {
	db := r.db.WithContext(ctx).Model(&AdminNotification{})
	if q.RequestingAdminID != "" {
		db = db.Where("requesting_admin_id = ?", q.RequestingAdminID)
	}
	if q.TargetSuperAdminID != "" {
		db = db.Where("target_super_admin_id = ?", q.TargetSuperAdminID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	db = applySearch(db, q.Search)

	var list []AdminNotification
	err := db.Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

// CreateMirror maps a unique violation on source_notification_id to
// ErrAlreadyForwarded.
func (r *gormRepository) CreateMirror(ctx context.Context, n *SuperAdminNotification) error {
	err := r.db.WithContext(ctx).Create(n).Error
	if dberrors.IsUniqueViolation(err) {
		return ErrAlreadyForwarded
	}
	return err
}

func (r *gormRepository) GetMirrorBySource(ctx context.Context, sourceID int64) (*SuperAdminNotification, error) {
	var n SuperAdminNotification
	if err := r.db.WithContext(ctx).Where("source_notification_id = ?", sourceID).First(&n).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *gormRepository) GetSuperAdminFacing(ctx context.Context, id int64) (*SuperAdminNotification, error) {
	var n SuperAdminNotification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *gormRepository) MarkSuperAdminFacingRead(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&SuperAdminNotification{}).
		Where("id = ? AND read_by_super_admin = ?", id, false).
		Updates(map[string]any{"read_by_super_admin": true, "read_at": at}).Error
}

func (r *gormRepository) DeleteSuperAdminFacing(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&SuperAdminNotification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// scopeSuperAdmin matches records targeted at superAdminID and records
// without a target, which every super-admin sees.
func scopeSuperAdmin(db *gorm.DB, superAdminID string) *gorm.DB {
	if superAdminID == "" {
		return db
	}
	return db.Where("(target_super_admin_id = ? OR target_super_admin_id = '' OR target_super_admin_id IS NULL)", superAdminID)
}

func (r *gormRepository) ListSuperAdminFacing(ctx context.Context, q Query) ([]SuperAdminNotification, error) {
	db := scopeSuperAdmin(r.db.WithContext(ctx).Model(&SuperAdminNotification{}), q.TargetSuperAdminID)
	if q.RequestingAdminID != "" {
		db = db.Where("requesting_admin_id = ?", q.RequestingAdminID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	db = applySearch(db, q.Search)

	var list []SuperAdminNotification
	err := db.Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

func (r *gormRepository) CountUnreadSuperAdminFacing(ctx context.Context, superAdminID string) (int64, error) {
	var n int64
	db := scopeSuperAdmin(r.db.WithContext(ctx).Model(&SuperAdminNotification{}), superAdminID)
	err := db.Where("read_by_super_admin = ?", false).Count(&n).Error
	return n, err
}
