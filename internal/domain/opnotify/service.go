package opnotify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"slices"
	"strings"
	"time"

	"travelagency/internal/domain/admin"
	"travelagency/internal/events"
	"travelagency/internal/pkg/mailer"
)

const mailTimeout = 30 * time.Second

// Directory resolves operator contact details for email fan-out.
type Directory interface {
	FindByIDs(ctx context.Context, ids []string) ([]admin.Operator, error)
}

type Options struct {
	Events    events.Sink
	Mailer    mailer.Sender
	Directory Directory
	Now       func() time.Time
}

// Caller is the authenticated operator acting on a notification.
type Caller struct {
	ID   string
	Role string
}

type BroadcastInput struct {
	Sections       []string
	Action         string
	Message        string
	Priority       string
	TargetAdminIDs []string
}

type Filter struct {
	Kind   Kind
	Status Status
	Search string
}

type MarkDoneResult struct {
	Notification OperatorNotification  `json:"notification"`
	Forwarded    *OperatorNotification `json:"forwarded,omitempty"`
}

// Service routes operator requests between admins and super-admins.
type Service struct {
	repo Repository
	sink events.Sink
	mail mailer.Sender
	dir  Directory
	now  func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo: repo,
		sink: opts.Events,
		mail: opts.Mailer,
		dir:  opts.Directory,
		now:  opts.Now,
	}
	if s.sink == nil {
		s.sink = events.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func distinctNonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Broadcast creates one pending request per distinct target admin.
func (s *Service) Broadcast(ctx context.Context, superAdminID string, in BroadcastInput) ([]OperatorNotification, error) {
	targets := distinctNonBlank(in.TargetAdminIDs)
	if len(targets) == 0 {
		return nil, ErrNoAdmins
	}

	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = PriorityNormal
	}
	sections := distinctNonBlank(in.Sections)

	list := make([]*AdminNotification, 0, len(targets))
	for _, adminID := range targets {
		list = append(list, &AdminNotification{
			Sections:           slices.Clone(sections),
			Action:             strings.TrimSpace(in.Action),
			Message:            strings.TrimSpace(in.Message),
			Priority:           priority,
			RequestingAdminID:  adminID,
			TargetSuperAdminID: superAdminID,
			Status:             StatusPending,
		})
	}
	if err := s.repo.CreateAdminFacing(ctx, list); err != nil {
		return nil, fmt.Errorf("%w: broadcast: %w", ErrPersistenceFailure, err)
	}

	views := make([]OperatorNotification, 0, len(list))
	for _, n := range list {
		v := n.View()
		views = append(views, v)
		s.sink.Publish(ctx, events.New(events.TypeNotificationCreated,
			events.Audience{Role: admin.RoleAdmin, OperatorID: n.RequestingAdminID}, v))
	}

	log.Printf("operator_broadcast super_admin_id=%s targets=%d action=%q", superAdminID, len(targets), in.Action)
	s.emailTargets(ctx, targets, list[0])
	return views, nil
}

func (s *Service) emailTargets(ctx context.Context, targets []string, n *AdminNotification) {
	if s.mail == nil || s.dir == nil {
		return
	}
	ops, err := s.dir.FindByIDs(ctx, targets)
	if err != nil {
		log.Printf("operator_broadcast_email_lookup_failed err=%v", err)
		return
	}

	subject := "New request"
	if n.Action != "" {
		subject = "New request: " + n.Action
	}
	var body strings.Builder
	fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(n.Message))
	if len(n.Sections) > 0 {
		fmt.Fprintf(&body, "<p>Sections: %s</p>\n", html.EscapeString(strings.Join(n.Sections, ", ")))
	}
	fmt.Fprintf(&body, "<p>Priority: %s</p>", html.EscapeString(n.Priority))

	for _, op := range ops {
		if strings.TrimSpace(op.Email) == "" {
			continue
		}
		mailer.SendAsync(s.mail, mailer.Message{
			To:      []string{op.Email},
			Subject: subject,
			HTML:    body.String(),
		}, mailTimeout)
	}
}

// MarkDone resolves an admin's own request and forwards it to the
// super-admin side exactly once. Calling it again before the forward was
// recorded retries the mirror write; after that it only reports the mirror,
// which may since have been deleted. If the forward cannot be written the
// request stays done and ErrPersistenceFailure is returned so the caller can
// retry.
func (s *Service) MarkDone(ctx context.Context, adminID string, id int64) (*MarkDoneResult, error) {
	n, err := s.repo.GetAdminFacing(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load %d: %w", ErrPersistenceFailure, id, err)
	}
	if adminID == "" || n.RequestingAdminID != adminID {
		return nil, ErrNotFound
	}

	if n.Status != StatusDone {
		now := s.now()
		if err := s.repo.MarkAdminFacingDone(ctx, n.ID, now); err != nil {
			return nil, fmt.Errorf("%w: mark done %d: %w", ErrPersistenceFailure, n.ID, err)
		}
		n.Status = StatusDone
		n.DoneAt = &now
	}

	result := &MarkDoneResult{Notification: n.View()}

	if n.ForwardedAt != nil {
		mirror, err := s.repo.GetMirrorBySource(ctx, n.ID)
		switch {
		case err == nil:
			v := mirror.View()
			result.Forwarded = &v
		case errors.Is(err, ErrNotFound):
			// deleted by the super-admin
		default:
			return result, fmt.Errorf("%w: lookup mirror %d: %w", ErrPersistenceFailure, n.ID, err)
		}
		return result, nil
	}

	mirror, err := s.ensureMirror(ctx, n, adminID)
	if err != nil {
		log.Printf("operator_forward_failed notification_id=%d admin_id=%s err=%v", n.ID, adminID, err)
		return result, err
	}
	v := mirror.View()
	result.Forwarded = &v

	now := s.now()
	if err := s.repo.MarkAdminFacingForwarded(ctx, n.ID, now); err != nil {
		log.Printf("operator_forward_mark_failed notification_id=%d admin_id=%s err=%v", n.ID, adminID, err)
		return result, fmt.Errorf("%w: record forward %d: %w", ErrPersistenceFailure, n.ID, err)
	}
	n.ForwardedAt = &now
	result.Notification = n.View()
	return result, nil
}

func (s *Service) ensureMirror(ctx context.Context, n *AdminNotification, adminID string) (*SuperAdminNotification, error) {
	existing, err := s.repo.GetMirrorBySource(ctx, n.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: lookup mirror %d: %w", ErrPersistenceFailure, n.ID, err)
	}

	mirror := &SuperAdminNotification{
		SourceNotificationID: n.ID,
		Sections:             slices.Clone(n.Sections),
		Action:               n.Action,
		Message:              n.Message,
		Priority:             n.Priority,
		RequestingAdminID:    adminID,
		TargetSuperAdminID:   n.TargetSuperAdminID,
		Status:               n.Status,
	}
	if err := s.repo.CreateMirror(ctx, mirror); err != nil {
		if errors.Is(err, ErrAlreadyForwarded) {
			if existing, err := s.repo.GetMirrorBySource(ctx, n.ID); err == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("%w: create mirror %d: %w", ErrPersistenceFailure, n.ID, err)
	}

	s.sink.Publish(ctx, events.New(events.TypeNotificationForward,
		events.Audience{Role: admin.RoleSuperAdmin, OperatorID: mirror.TargetSuperAdminID}, mirror.View()))
	return mirror, nil
}

func visibleTo(n *SuperAdminNotification, superAdminID string) bool {
	return n.TargetSuperAdminID == "" || n.TargetSuperAdminID == superAdminID
}

// MarkRead flags a forwarded record as read. Status is never touched.
func (s *Service) MarkRead(ctx context.Context, superAdminID string, id int64) (OperatorNotification, error) {
	n, err := s.repo.GetSuperAdminFacing(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OperatorNotification{}, ErrNotFound
		}
		return OperatorNotification{}, fmt.Errorf("%w: load %d: %w", ErrPersistenceFailure, id, err)
	}
	if !visibleTo(n, superAdminID) {
		return OperatorNotification{}, ErrNotFound
	}
	if n.ReadBySuperAdmin {
		return n.View(), nil
	}

	now := s.now()
	if err := s.repo.MarkSuperAdminFacingRead(ctx, n.ID, now); err != nil {
		return OperatorNotification{}, fmt.Errorf("%w: mark read %d: %w", ErrPersistenceFailure, n.ID, err)
	}
	n.ReadBySuperAdmin = true
	n.ReadAt = &now

	v := n.View()
	s.sink.Publish(ctx, events.New(events.TypeNotificationRead,
		events.Audience{Role: admin.RoleAdmin, OperatorID: n.RequestingAdminID}, v))
	return v, nil
}

// Delete removes a record owned by the caller once its own status is done.
// Admins delete requests, super-admins delete forwarded records.
func (s *Service) Delete(ctx context.Context, caller Caller, id int64) error {
	switch caller.Role {
	case admin.RoleAdmin:
		n, err := s.repo.GetAdminFacing(ctx, id)
		if err != nil {
			return s.loadErr(err, id)
		}
		if n.RequestingAdminID != caller.ID {
			return ErrNotFound
		}
		if n.Status != StatusDone {
			return ErrForbidden
		}
		if err := s.repo.DeleteAdminFacing(ctx, id); err != nil {
			return s.loadErr(err, id)
		}
	case admin.RoleSuperAdmin:
		n, err := s.repo.GetSuperAdminFacing(ctx, id)
		if err != nil {
			return s.loadErr(err, id)
		}
		if !visibleTo(n, caller.ID) {
			return ErrNotFound
		}
		if n.Status != StatusDone {
			return ErrForbidden
		}
		if err := s.repo.DeleteSuperAdminFacing(ctx, id); err != nil {
			return s.loadErr(err, id)
		}
	default:
		return ErrForbidden
	}

	log.Printf("operator_notification_deleted id=%d operator_id=%s role=%s", id, caller.ID, caller.Role)
	return nil
}

func (s *Service) loadErr(err error, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: notification %d: %w", ErrPersistenceFailure, id, err)
}

// List merges both tables as seen by caller, newest first. Ties are broken
// by kind and then by id, newest id first.
func (s *Service) List(ctx context.Context, caller Caller, f Filter) ([]OperatorNotification, error) {
	var adminQ, superQ Query
	switch caller.Role {
	case admin.RoleAdmin:
		adminQ.RequestingAdminID = caller.ID
		superQ.RequestingAdminID = caller.ID
	case admin.RoleSuperAdmin:
		adminQ.TargetSuperAdminID = caller.ID
		superQ.TargetSuperAdminID = caller.ID
	default:
		return nil, ErrForbidden
	}
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusDone {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	adminQ.Status, superQ.Status = f.Status, f.Status
	adminQ.Search, superQ.Search = f.Search, f.Search

	out := []OperatorNotification{}
	if f.Kind == "" || f.Kind == KindAdminFacing {
		list, err := s.repo.ListAdminFacing(ctx, adminQ)
		if err != nil {
			return nil, fmt.Errorf("%w: list requests: %w", ErrPersistenceFailure, err)
		}
		for i := range list {
			out = append(out, list[i].View())
		}
	}
	if f.Kind == "" || f.Kind == KindSuperAdminFacing {
		list, err := s.repo.ListSuperAdminFacing(ctx, superQ)
		if err != nil {
			return nil, fmt.Errorf("%w: list forwarded: %w", ErrPersistenceFailure, err)
		}
		for i := range list {
			out = append(out, list[i].View())
		}
	}

	slices.SortStableFunc(out, func(a, b OperatorNotification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, superAdminID string) (int64, error) {
	return s.repo.CountUnreadSuperAdminFacing(ctx, superAdminID)
}
