package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"travelagency/internal/config"
	"travelagency/internal/database"
	"travelagency/internal/domain/reminder"
	"travelagency/internal/events"
	"travelagency/internal/pkg/mailer"
	"travelagency/internal/pkg/mq"
	"travelagency/internal/pkg/obs"
	"travelagency/internal/server"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "travelagency-api", cfg.OTelEndpoint, cfg.AppEnv)
	if err != nil {
		log.Printf("otel init failed err=%v", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	opts := server.Options{Location: loc}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		opts.Guard = reminder.NewRedisGuard(rdb, "", cfg.ReminderLockTTL)
		log.Printf("reminder tick guard=redis addr=%s", redisOpts.Addr)
	}

	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Printf("rabbit disabled err=%v", err)
		} else {
			defer pub.Close()
			opts.Sinks = append(opts.Sinks, events.NewBrokerSink(pub))
			log.Printf("events broker exchange=%s", cfg.RabbitExchange)
		}
	}

	if cfg.SMTPHost != "" {
		opts.Mailer = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPEncryption)
	}

	app := server.New(cfg, db, opts)
	if cfg.ReminderEnabled {
		app.Scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown err=%v", err)
	}
	app.Scheduler.Stop()
}
