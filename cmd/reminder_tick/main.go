package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"travelagency/internal/config"
	"travelagency/internal/database"
	"travelagency/internal/domain/admin"
	"travelagency/internal/domain/booking"
	"travelagency/internal/domain/reminder"
	"travelagency/internal/pkg/mailer"
)

// One guarded reminder tick, for cron-style deployments that disable the
// in-process scheduler.
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
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	var guard reminder.TickGuard
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		guard = reminder.NewRedisGuard(rdb, "", cfg.ReminderLockTTL)
	}

	var mail mailer.Sender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPEncryption)
	}

	svc := reminder.NewService(reminder.NewRepository(db), booking.Sources(db, loc), reminder.Options{
		Location:      loc,
		SourceTimeout: cfg.ReminderSourceTimeout,
		DigestEmail:   cfg.ReminderDigestEmail,
		Mailer:        mail,
		Directory:     admin.NewOperatorRepository(db),
	})
	sched := reminder.NewScheduler(svc, guard, reminder.SchedulerConfig{Interval: cfg.ReminderInterval})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReminderLockTTL)
	defer cancel()

	report := sched.Tick(ctx)
	if report.Skipped {
		log.Println("reminder tick skipped: another tick holds the lock")
		return
	}
	log.Printf("reminder tick completed: created=%d sources=%d failed=%t", report.Created, len(report.Sources), report.Failed())

	// Give the async digest mail a moment before the process exits.
	if cfg.ReminderDigestEmail != "" && report.Created > 0 {
		time.Sleep(2 * time.Second)
	}
}
