package opnotify

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

type Kind string

const (
	KindAdminFacing      Kind = "admin_facing"
	KindSuperAdminFacing Kind = "super_admin_facing"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// AdminNotification is a request a super-admin raised against one admin.
type AdminNotification struct {
	ID                 int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	Sections           datatypes.JSONSlice[string] `json:"sections"`
	Action             string                      `json:"action" gorm:"size:120"`
	Message            string                      `json:"message" gorm:"type:text"`
	Priority           string                      `json:"priority" gorm:"size:16;default:normal"`
	RequestingAdminID  string                      `json:"requesting_admin_id" gorm:"size:64;index;not null"`
	TargetSuperAdminID string                      `json:"target_super_admin_id" gorm:"size:64;index"`
	Status             Status                      `json:"status" gorm:"size:16;index;not null"`
	DoneAt             *time.Time                  `json:"done_at,omitempty"`
	// ForwardedAt is set once the mirror has been written. It stays set
	// after the super-admin deletes the mirror.
	ForwardedAt        *time.Time                  `json:"forwarded_at,omitempty"`
	CreatedAt          time.Time                   `json:"created_at" gorm:"autoCreateTime;index"`
}

func (AdminNotification) TableName() string {
	return "admin_notifications"
}

// SuperAdminNotification mirrors an AdminNotification once the admin has
// resolved it. SourceNotificationID is unique so a request is forwarded once.
type SuperAdminNotification struct {
	ID                   int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	SourceNotificationID int64                       `json:"source_notification_id" gorm:"uniqueIndex;not null"`
	Sections             datatypes.JSONSlice[string] `json:"sections"`
	Action               string                      `json:"action" gorm:"size:120"`
	Message              string                      `json:"message" gorm:"type:text"`
	Priority             string                      `json:"priority" gorm:"size:16"`
	RequestingAdminID    string                      `json:"requesting_admin_id" gorm:"size:64;index;not null"`
	TargetSuperAdminID   string                      `json:"target_super_admin_id" gorm:"size:64;index"`
	Status               Status                      `json:"status" gorm:"size:16;not null"`
	ReadBySuperAdmin     bool                        `json:"read_by_super_admin" gorm:"default:false;index"`
	ReadAt               *time.Time                  `json:"read_at,omitempty"`
	CreatedAt            time.Time                   `json:"created_at" gorm:"autoCreateTime;index"`
}

func (SuperAdminNotification) TableName() string {
	return "super_admin_notifications"
}

// OperatorNotification is the merged API view of both tables.
type OperatorNotification struct {
	Kind                 Kind       `json:"kind"`
	ID                   int64      `json:"id"`
	SourceNotificationID *int64     `json:"source_notification_id,omitempty"`
	Sections             []string   `json:"sections"`
	Action               string     `json:"action"`
	Message              string     `json:"message"`
	Priority             string     `json:"priority"`
	RequestingAdminID    string     `json:"requesting_admin_id"`
	TargetSuperAdminID   string     `json:"target_super_admin_id,omitempty"`
	Status               Status     `json:"status"`
	ReadBySuperAdmin     bool       `json:"read_by_super_admin"`
	DoneAt               *time.Time `json:"done_at,omitempty"`
	ForwardedAt          *time.Time `json:"forwarded_at,omitempty"`
	ReadAt               *time.Time `json:"read_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func sectionsOf(s datatypes.JSONSlice[string]) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

func (n *AdminNotification) View() OperatorNotification {
	return OperatorNotification{
		Kind:               KindAdminFacing,
		ID:                 n.ID,
		Sections:           sectionsOf(n.Sections),
		Action:             n.Action,
		Message:            n.Message,
		Priority:           n.Priority,
		RequestingAdminID:  n.RequestingAdminID,
		TargetSuperAdminID: n.TargetSuperAdminID,
		Status:             n.Status,
		DoneAt:             n.DoneAt,
		ForwardedAt:        n.ForwardedAt,
		CreatedAt:          n.CreatedAt,
	}
}

func (n *SuperAdminNotification) View() OperatorNotification {
	src := n.SourceNotificationID
	return OperatorNotification{
		Kind:                 KindSuperAdminFacing,
		ID:                   n.ID,
		SourceNotificationID: &src,
		Sections:             sectionsOf(n.Sections),
		Action:               n.Action,
		Message:              n.Message,
		Priority:             n.Priority,
		RequestingAdminID:    n.RequestingAdminID,
		TargetSuperAdminID:   n.TargetSuperAdminID,
		Status:               n.Status,
		ReadBySuperAdmin:     n.ReadBySuperAdmin,
		ReadAt:               n.ReadAt,
		CreatedAt:            n.CreatedAt,
	}
}
