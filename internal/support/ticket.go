package support

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

type TicketFilter struct {
	Status   models.TicketStatus
	Priority models.TicketPriority
}

type TicketRepository interface {
	Create(ctx context.Context, t *models.SupportTicket) error
	Get(ctx context.Context, id int64) (*models.SupportTicket, error)
	ListForUser(ctx context.Context, userID string) ([]models.SupportTicket, error)
	List(ctx context.Context, f TicketFilter) ([]models.SupportTicket, error)
	Save(ctx context.Context, t *models.SupportTicket) error
}

// Notifier is told about new tickets. Failures are logged, never returned
// to the submitter.
type Notifier interface {
	TicketCreated(ctx context.Context, t *models.SupportTicket) error
}

// Actor is the authenticated caller acting on a ticket.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

type NewTicket struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Screenshot  *string `json:"screenshot,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// TicketPatch holds the mutable ticket fields. Status may be changed by the
// owner or the assignee; the rest are staff-only.
type TicketPatch struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

type TicketService struct {
	repo     TicketRepository
	notifier Notifier
	lg       *zap.SugaredLogger
	now      func() time.Time
}

func NewTicketService(repo TicketRepository, notifier Notifier, lg *zap.SugaredLogger) *TicketService {
	return &TicketService{repo: repo, notifier: notifier, lg: lg, now: time.Now}
}

func (in NewTicket) validate(email string) (models.SupportTicket, apperr.FieldErrors) {
	var fe apperr.FieldErrors
	t := models.SupportTicket{
		Subject:     strings.TrimSpace(in.Subject),
		Description: strings.TrimSpace(in.Description),
		Screenshot:  in.Screenshot,
		Status:      models.TicketOpen,
		Priority:    models.PriorityMedium,
		Email:       strings.TrimSpace(email),
	}
	switch {
	case t.Subject == "":
		fe.Add("subject", apperr.Required)
	case utf8.RuneCountInString(t.Subject) > 255:
		fe.Add("subject", apperr.TooLong)
	}
	if t.Description == "" {
		fe.Add("description", apperr.Required)
	}
	if t.Email == "" {
		fe.Add("email", apperr.Required)
	} else if _, err := mail.ParseAddress(t.Email); err != nil {
		fe.Add("email", apperr.InvalidFormat)
	}
	if in.Priority != nil && *in.Priority != "" {
		p := models.TicketPriority(*in.Priority)
		if !p.Valid() {
			fe.Add("priority", apperr.InvalidChoice)
		}
		t.Priority = p
	}
	if in.PhoneNumber != nil && *in.PhoneNumber != "" {
		phone := strings.TrimSpace(*in.PhoneNumber)
		if len(phone) > 20 {
			fe.Add("phone_number", apperr.TooLong)
		}
		t.PhoneNumber = &phone
	}
	return t, fe
}

// Create opens a ticket for the actor, using the account email as contact.
func (s *TicketService) Create(ctx context.Context, actor Actor, in NewTicket) (*models.SupportTicket, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	t, fe := in.validate(actor.Email)
	if fe != nil {
		return nil, fe
	}
	t.UserID = actor.UserID
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.TicketCreated(ctx, &t); err != nil {
			s.lg.Warnw("ticket notification failed", "ticket_id", t.ID, "error", err)
		}
	}
	return &t, nil
}

func (s *TicketService) ListMine(ctx context.Context, actor Actor) ([]models.SupportTicket, error) {
	return s.repo.ListForUser(ctx, actor.UserID)
}

func (s *TicketService) ListAll(ctx context.Context, f TicketFilter) ([]models.SupportTicket, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.FieldErrors{{Field: "status", Reason: apperr.InvalidChoice}}
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, apperr.FieldErrors{{Field: "priority", Reason: apperr.InvalidChoice}}
	}
	return s.repo.List(ctx, f)
}

func canSee(actor Actor, t *models.SupportTicket) bool {
	if actor.IsAdmin || t.UserID == actor.UserID {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == actor.UserID
}

// Get hides tickets the actor may not see behind a not-found error.
func (s *TicketService) Get(ctx context.Context, actor Actor, id int64) (*models.SupportTicket, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, t) {
		return nil, apperr.NotFound("ticket not found")
	}
	return t, nil
}

// Update applies p. Any status may follow any other; ResolvedAt is stamped
// the first time the ticket reaches resolved and kept afterwards.
func (s *TicketService) Update(ctx context.Context, actor Actor, id int64, p TicketPatch) (*models.SupportTicket, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && (p.Priority != nil || p.AssignedTo != nil || p.AdminNotes != nil) {
		return nil, apperr.Forbidden("only staff can change priority, assignee or notes")
	}

	var fe apperr.FieldErrors
	if p.Status != nil {
		st := models.TicketStatus(*p.Status)
		if !st.Valid() {
			fe.Add("status", apperr.InvalidChoice)
		}
		t.Status = st
	}
	if p.Priority != nil {
		pr := models.TicketPriority(*p.Priority)
		if !pr.Valid() {
			fe.Add("priority", apperr.InvalidChoice)
		}
		t.Priority = pr
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			t.AssignedTo = nil
		} else if id, err := uuid.Parse(*p.AssignedTo); err != nil {
			fe.Add("assigned_to", apperr.InvalidFormat)
		} else {
			assignee := id.String()
			t.AssignedTo = &assignee
		}
	}
	if p.AdminNotes != nil {
		notes := *p.AdminNotes
		t.AdminNotes = &notes
	}
	if fe != nil {
		return nil, fe
	}

	t.StampResolution(s.now())
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}
	s.lg.Infow("ticket updated", "ticket_id", t.ID, "status", t.Status, "by", actor.UserID)
	return t, nil
}
