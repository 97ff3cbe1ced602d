package reminder

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *AdminReminder) error
	GetByBookingID(ctx context.Context, bookingID string) (*AdminReminder, error)
	ListUnread(ctx context.Context) ([]AdminReminder, error)
	List(ctx context.Context, limit, offset int) ([]AdminReminder, int64, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (*AdminReminder, error)
	MarkAllRead(ctx context.Context, at time.Time) (int64, error)
}
