package reminder

import "time"

// AdminReminder is an in-app alert that a booking starts tomorrow.
// BookingID is unique: a booking is reminded about at most once.
type AdminReminder struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string     `json:"title" gorm:"size:120;not null"`
	Message         string     `json:"message" gorm:"type:text;not null"`
	BookingID       string     `json:"booking_id" gorm:"size:64;uniqueIndex;not null"`
	BookingCategory string     `json:"booking_category" gorm:"size:32;not null"`
	StartDate       string     `json:"start_date" gorm:"size:10"`
	IsRead          bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (AdminReminder) TableName() string {
	return "admin_reminders"
}

type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already_exists"
)
