package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&DayTourBooking{}, &RoundTourBooking{}, &EventTourBooking{}, &CustomBooking{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func TestSources_ReturnTaggedBookings(t *testing.T) {
	db := setupTestDB(t)
	loc := time.UTC

	require.NoError(t, db.Create(&DayTourBooking{ID: "d1", FullName: "Alice", StartDate: "2026-10-16"}).Error)
	require.NoError(t, db.Create(&RoundTourBooking{ID: "r1", FullName: "Bob", StartDate: "2026-10-16T08:00:00Z", EndDate: "2026-10-20"}).Error)
	require.NoError(t, db.Create(&EventTourBooking{ID: "e1", Name: "Carol", StartDate: "2026-10-17 10:00:00"}).Error)
	require.NoError(t, db.Create(&CustomBooking{ID: "c1", BookingType: "day", Name: "Dan", TravelDate: "2026-10-16", StartDate: "2026-12-01"}).Error)
	require.NoError(t, db.Create(&CustomBooking{ID: "c2", BookingType: "Round", Name: "Eve", TravelDate: "2026-12-01", StartDate: "2026-10-18"}).Error)

	got := map[string]Booking{}
	for _, src := range Sources(db, loc) {
		list, err := src.List(context.Background())
		require.NoError(t, err, src.Name())
		for _, b := range list {
			got[b.ID] = b
		}
	}

	require.Len(t, got, 5)
	assert.Equal(t, CategoryDayTour, got["d1"].Category)
	assert.Equal(t, "Alice", got["d1"].CustomerName)
	assert.Equal(t, CategoryRoundTour, got["r1"].Category)
	assert.Equal(t, CategoryEventTour, got["e1"].Category)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, loc), got["e1"].StartDate)

	// The custom sub-tag decides which date column is the start date.
	assert.Equal(t, SubTypeDay, got["c1"].SubType)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, loc), got["c1"].StartDate)
	assert.Equal(t, SubTypeRound, got["c2"].SubType)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, loc), got["c2"].StartDate)
}

func TestCustomSource_DayFallsBackToStartDate(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&CustomBooking{ID: "c1", BookingType: "day", Name: "Dan", StartDate: "2026-10-16"}).Error)

	list, err := NewCustomSource(db, time.UTC).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 16, list[0].StartDate.Day())
}

func TestSource_SkipsMalformedRows(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&EventTourBooking{ID: "bad", Name: "Broken", StartDate: "next friday"}).Error)
	require.NoError(t, db.Create(&EventTourBooking{ID: "ok", Name: "Fine", StartDate: "2026-10-16"}).Error)
	require.NoError(t, db.Create(&CustomBooking{ID: "c?", BookingType: "cruise", Name: "Who", StartDate: "2026-10-16"}).Error)

	events, err := NewEventTourSource(db, time.UTC).List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].ID)

	customs, err := NewCustomSource(db, time.UTC).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customs)
}

func TestSource_QueryErrorIsReturned(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&RoundTourBooking{}))

	_, err := NewRoundTourSource(db, time.UTC).List(context.Background())
	assert.Error(t, err)
}

func TestBeforeCreate_AssignsID(t *testing.T) {
	db := setupTestDB(t)
	b := &DayTourBooking{FullName: "Auto", StartDate: "2026-10-16"}
	require.NoError(t, db.Create(b).Error)
	assert.NotEmpty(t, b.ID)
}
