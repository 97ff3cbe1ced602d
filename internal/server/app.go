package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"travelagency/internal/config"
	"travelagency/internal/domain/admin"
	"travelagency/internal/domain/booking"
	"travelagency/internal/domain/live"
	"travelagency/internal/domain/opnotify"
	"travelagency/internal/domain/reminder"
	"travelagency/internal/events"
	"travelagency/internal/pkg/jwt"
	"travelagency/internal/pkg/mailer"
)

type Options struct {
	Location *time.Location
	Guard    reminder.TickGuard
	Mailer   mailer.Sender
	// Extra event sinks, e.g. the message broker. The live hub is always added.
	Sinks []events.Sink
	Now   func() time.Time
}

// App holds every long-lived component of the service.
type App struct {
	Router        *gin.Engine
	Hub           *live.Hub
	JWT           *jwt.Service
	Operators     admin.OperatorRepository
	Reminders     *reminder.Service
	Scheduler     *reminder.Scheduler
	Notifications *opnotify.Service
}

func New(cfg *config.Config, db *gorm.DB, opts Options) *App {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	mail := opts.Mailer
	if mail == nil {
		mail = mailer.LogSender{}
	}

	hub := live.NewHub()
	sink := events.Fanout(append([]events.Sink{hub}, opts.Sinks...))
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	operators := admin.NewOperatorRepository(db)

	reminders := reminder.NewService(
		reminder.NewRepository(db),
		booking.Sources(db, loc),
		reminder.Options{
			Location:      loc,
			SourceTimeout: cfg.ReminderSourceTimeout,
			DigestEmail:   cfg.ReminderDigestEmail,
			Events:        sink,
			Mailer:        mail,
			Directory:     operators,
			Now:           opts.Now,
		},
	)
	scheduler := reminder.NewScheduler(reminders, opts.Guard, reminder.SchedulerConfig{
		Interval:   cfg.ReminderInterval,
		RunOnStart: cfg.ReminderRunOnStart,
	})

	notifications := opnotify.NewService(opnotify.NewRepository(db), opnotify.Options{
		Events:    sink,
		Mailer:    mail,
		Directory: operators,
		Now:       opts.Now,
	})

	app := &App{
		Hub:           hub,
		JWT:           jwtService,
		Operators:     operators,
		Reminders:     reminders,
		Scheduler:     scheduler,
		Notifications: notifications,
	}
	app.Router = newRouter(cfg, db, app)
	return app
}
