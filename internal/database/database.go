package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"travelagency/internal/domain/admin"
	"travelagency/internal/domain/booking"
	"travelagency/internal/domain/opnotify"
	"travelagency/internal/domain/reminder"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates every table this service reads or writes.
// Booking tables are normally owned by the booking CRUD service; migrating
// them here keeps local SQLite setups self-contained.
func Migrate(db *gorm.DB) error {
	models := []any{
		&admin.Operator{},
		&booking.DayTourBooking{},
		&booking.RoundTourBooking{},
		&booking.EventTourBooking{},
		&booking.CustomBooking{},
		&reminder.AdminReminder{},
		&opnotify.AdminNotification{},
		&opnotify.SuperAdminNotification{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("migrate failed model=%T err=%v", m, err)
			return err
		}
	}
	return nil
}
