package reminder

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travelagency/internal/domain/admin"
	"travelagency/internal/domain/booking"
	"travelagency/internal/events"
	"travelagency/internal/pkg/mailer"
)

const (
	reminderTitle      = "Tour reminder"
	defaultSourceLimit = 30 * time.Second
	digestMailTimeout  = 30 * time.Second
)

// Directory lists active operators; the digest goes to them when no
// digest address is configured.
type Directory interface {
	ListByRole(ctx context.Context, role string) ([]admin.Operator, error)
}

type Options struct {
	Location      *time.Location
	SourceTimeout time.Duration
	DigestEmail   string
	Events        events.Sink
	Mailer        mailer.Sender
	Directory     Directory
	Now           func() time.Time
}

type Service struct {
	repo          Repository
	sources       []booking.Source
	eval          Evaluator
	sourceTimeout time.Duration
	digestEmail   string
	sink          events.Sink
	mail          mailer.Sender
	dir           Directory
	now           func() time.Time
	tracer        trace.Tracer
}

func NewService(repo Repository, sources []booking.Source, opts Options) *Service {
	s := &Service{
		repo:          repo,
		sources:       sources,
		eval:          NewEvaluator(opts.Location),
		sourceTimeout: opts.SourceTimeout,
		digestEmail:   strings.TrimSpace(opts.DigestEmail),
		sink:          opts.Events,
		mail:          opts.Mailer,
		dir:           opts.Directory,
		now:           opts.Now,
		tracer:        otel.Tracer("travelagency/reminder"),
	}
	if s.sourceTimeout <= 0 {
		s.sourceTimeout = defaultSourceLimit
	}
	if s.sink == nil {
		s.sink = events.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func reminderMessage(b booking.Booking) string {
	return fmt.Sprintf("%s tour booked by %s is scheduled for tomorrow.", b.Label(), b.CustomerName)
}

// EnsureReminder creates the reminder for b unless one already exists.
// The unique index on booking_id settles races between concurrent callers.
func (s *Service) EnsureReminder(ctx context.Context, b booking.Booking) (Outcome, *AdminReminder, error) {
	if strings.TrimSpace(b.ID) == "" {
		return "", nil, fmt.Errorf("%w: booking id is empty", ErrValidation)
	}

	existing, err := s.repo.GetByBookingID(ctx, b.ID)
	if err == nil {
		return OutcomeAlreadyExists, existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", nil, fmt.Errorf("%w: lookup booking %s: %w", ErrPersistenceFailure, b.ID, err)
	}

	rem := &AdminReminder{
		Title:           reminderTitle,
		Message:         reminderMessage(b),
		BookingID:       b.ID,
		BookingCategory: b.Tag(),
		StartDate:       b.StartDate.Format("2006-01-02"),
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			existing, err := s.repo.GetByBookingID(ctx, b.ID)
			if err != nil {
				return "", nil, fmt.Errorf("%w: reload booking %s: %w", ErrPersistenceFailure, b.ID, err)
			}
			return OutcomeAlreadyExists, existing, nil
		}
		return "", nil, fmt.Errorf("%w: insert booking %s: %w", ErrPersistenceFailure, b.ID, err)
	}

	s.sink.Publish(ctx, events.New(events.TypeReminderCreated, events.Audience{Role: admin.RoleAdmin}, rem))
	return OutcomeCreated, rem, nil
}

type SourceReport struct {
	Source   string `json:"source"`
	Scanned  int    `json:"scanned"`
	Due      int    `json:"due"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

type TickReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Skipped    bool           `json:"skipped"`
	Created    int            `json:"created"`
	Sources    []SourceReport `json:"sources"`
}

// Failed reports whether any source or insert failed during the tick.
func (r TickReport) Failed() bool {
	for _, s := range r.Sources {
		if s.Error != "" || s.Failed > 0 {
			return true
		}
	}
	return false
}

type fetchResult struct {
	bookings []booking.Booking
	err      error
}

// RunTick pulls every source, evaluates each booking against tomorrow and
// persists missing reminders. A failing source or insert is recorded in the
// report and never stops the rest of the tick.
func (s *Service) RunTick(ctx context.Context) TickReport {
	ctx, span := s.tracer.Start(ctx, "reminder.tick")
	defer span.End()

	now := s.now()
	report := TickReport{StartedAt: now, Sources: make([]SourceReport, len(s.sources))}

	results := s.fetchAll(ctx)

	var created []*AdminReminder
	for i, src := range s.sources {
		sr := &report.Sources[i]
		sr.Source = src.Name()

		res := results[i]
		if res.err != nil {
			sr.Error = res.err.Error()
			log.Printf("reminder_source_failed source=%s err=%v", sr.Source, res.err)
			continue
		}

		sr.Scanned = len(res.bookings)
		for _, b := range res.bookings {
			if !s.eval.ShouldRemind(now, b.StartDate) {
				continue
			}
			sr.Due++

			outcome, rem, err := s.EnsureReminder(ctx, b)
			if err != nil {
				sr.Failed++
				log.Printf("reminder_create_failed source=%s booking_id=%s err=%v", sr.Source, b.ID, err)
				continue
			}
			switch outcome {
			case OutcomeCreated:
				sr.Created++
				created = append(created, rem)
			case OutcomeAlreadyExists:
				sr.Existing++
			}
		}
	}

	report.Created = len(created)
	report.FinishedAt = s.now()

	span.SetAttributes(
		attribute.Int("reminder.created", report.Created),
		attribute.Int("reminder.sources", len(s.sources)),
	)
	if report.Failed() {
		span.SetStatus(codes.Error, "partial failure")
	}

	log.Printf("reminder_tick_done created=%d sources=%d failed=%t duration=%s",
		report.Created, len(s.sources), report.Failed(), report.FinishedAt.Sub(report.StartedAt))

	s.sendDigest(ctx, created)
	return report
}

// fetchAll lists every source concurrently, each bounded by sourceTimeout.
// Results keep the order of s.sources.
func (s *Service) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src booking.Source) {
			defer wg.Done()
			results[i] = s.fetchOne(ctx, src)
		}(i, src)
	}
	wg.Wait()
	return results
}

func (s *Service) fetchOne(ctx context.Context, src booking.Source) fetchResult {
	ctx, span := s.tracer.Start(ctx, "reminder.source",
		trace.WithAttributes(attribute.String("source", src.Name())))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("%w: %s panicked: %v", ErrAdapterFailure, src.Name(), r)}
			}
		}()
		list, err := src.List(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrAdapterFailure, src.Name(), err)
		}
		done <- fetchResult{bookings: list, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: fmt.Errorf("%w: %s: %w", ErrAdapterFailure, src.Name(), ctx.Err())}
	}

	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, "source failed")
	} else {
		span.SetAttributes(attribute.Int("bookings", len(res.bookings)))
	}
	return res
}

func (s *Service) sendDigest(ctx context.Context, created []*AdminReminder) {
	if len(created) == 0 || s.mail == nil {
		return
	}
	to := s.digestRecipients(ctx)
	if len(to) == 0 {
		return
	}

	var body strings.Builder
	body.WriteString("<p>Bookings starting tomorrow:</p>\n<ul>\n")
	for _, r := range created {
		fmt.Fprintf(&body, "<li>%s</li>\n", html.EscapeString(r.Message))
	}
	body.WriteString("</ul>")

	mailer.SendAsync(s.mail, mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("%d booking(s) start tomorrow", len(created)),
		HTML:    body.String(),
	}, digestMailTimeout)
}

// digestRecipients prefers the configured address and falls back to every
// active operator with an email.
func (s *Service) digestRecipients(ctx context.Context) []string {
	if s.digestEmail != "" {
		return []string{s.digestEmail}
	}
	if s.dir == nil {
		return nil
	}

	var to []string
	seen := map[string]bool{}
	for _, role := range []string{admin.RoleSuperAdmin, admin.RoleAdmin} {
		ops, err := s.dir.ListByRole(ctx, role)
		if err != nil {
			log.Printf("reminder_digest_directory_failed role=%s err=%v", role, err)
			continue
		}
		for _, op := range ops {
			email := strings.TrimSpace(op.Email)
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			to = append(to, email)
		}
	}
	return to
}

func (s *Service) ListUnread(ctx context.Context) ([]AdminReminder, error) {
	return s.repo.ListUnread(ctx)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]AdminReminder, int64, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	return list, unread, total, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}

func (s *Service) MarkRead(ctx context.Context, id int64) (*AdminReminder, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.MarkRead(ctx, id, s.now())
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx, s.now())
}
