package opnotify

import (
	"context"
	"time"
)

// Query scopes a list to one operator. Empty fields do not filter.
type Query struct {
	RequestingAdminID  string
	TargetSuperAdminID string
	Status             Status
	Search             string
}

type Repository interface {
	CreateAdminFacing(ctx context.Context, list []*AdminNotification) error
	GetAdminFacing(ctx context.Context, id int64) (*AdminNotification, error)
	MarkAdminFacingDone(ctx context.Context, id int64, at time.Time) error
	MarkAdminFacingForwarded(ctx context.Context, id int64, at time.Time) error
	DeleteAdminFacing(ctx context.Context, id int64) error
	ListAdminFacing(ctx context.Context, q Query) ([]AdminNotification, error)

	CreateMirror(ctx context.Context, n *SuperAdminNotification) error
	GetMirrorBySource(ctx context.Context, sourceID int64) (*SuperAdminNotification, error)
	GetSuperAdminFacing(ctx context.Context, id int64) (*SuperAdminNotification, error)
	MarkSuperAdminFacingRead(ctx context.Context, id int64, at time.Time) error
	DeleteSuperAdminFacing(ctx context.Context, id int64) error
	ListSuperAdminFacing(ctx context.Context, q Query) ([]SuperAdminNotification, error)
	CountUnreadSuperAdminFacing(ctx context.Context, superAdminID string) (int64, error)
}
