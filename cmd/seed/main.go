package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm/clause"

	"travelagency/internal/config"
	"travelagency/internal/database"
	"travelagency/internal/domain/admin"
	"travelagency/internal/domain/booking"
	"travelagency/internal/pkg/dberrors"
	"travelagency/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// ================== OPERATORS ==================
	log.Println("Creating operators...")

	operators := []admin.Operator{
		{ID: "s1", Email: "super@travel.local", Name: "Super Admin", Role: admin.RoleSuperAdmin},
		{ID: "a1", Email: "ops1@travel.local", Name: "Operations One", Role: admin.RoleAdmin},
		{ID: "a2", Email: "ops2@travel.local", Name: "Operations Two", Role: admin.RoleAdmin},
	}
	ops := admin.NewOperatorRepository(db)
	for i := range operators {
		operators[i].IsActive = true
		err := ops.Create(context.Background(), &operators[i])
		if dberrors.IsUniqueViolation(err) {
			log.Printf("operator exists, skipped: %s", operators[i].Email)
			continue
		}
		if err != nil {
			log.Fatal("create operator failed:", err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")

	now := time.Now().In(loc)
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	onConflict := clause.OnConflict{DoNothing: true}
	must := func(err error) {
		if err != nil {
			log.Fatal("create booking failed:", err)
		}
	}
	must(db.Clauses(onConflict).Create(&[]booking.DayTourBooking{
		{ID: "seed-day-1", FullName: "Aigerim Sadykova", Email: "aigerim@example.com", StartDate: day(1) + "T08:30:00"},
		{ID: "seed-day-2", FullName: "John Smith", Email: "john@example.com", StartDate: day(3)},
	}).Error)
	must(db.Clauses(onConflict).Create(&[]booking.RoundTourBooking{
		{ID: "seed-round-1", FullName: "Maria Rossi", StartDate: day(1), EndDate: day(6)},
	}).Error)
	must(db.Clauses(onConflict).Create(&[]booking.EventTourBooking{
		{ID: "seed-event-1", Name: "Timur Bekov", StartDate: day(2)},
	}).Error)
	must(db.Clauses(onConflict).Create(&[]booking.CustomBooking{
		{ID: "seed-custom-1", BookingType: string(booking.SubTypeDay), Name: "Lena Kim", TravelDate: day(1)},
		{ID: "seed-custom-2", BookingType: string(booking.SubTypeRound), Name: "Arman Ospanov", StartDate: day(10)},
	}).Error)

	// ================== TOKENS ==================
	j := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	fmt.Println("\nDev tokens:")
	for _, op := range operators {
		tok, err := j.GenerateToken(op.ID, op.Role)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-10s %-22s %s\n", op.Role, op.Email, tok)
	}
	fmt.Printf("\nSeed complete. Bookings starting tomorrow: %s\n", day(1))
}
