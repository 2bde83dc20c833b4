package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/auth"
	"evmeri/internal/models"
	"evmeri/internal/support"
)

type UserByID interface {
	ByID(ctx context.Context, id string) (*models.User, error)
}

func actorFrom(r *http.Request) support.Actor {
	c := auth.FromContext(r.Context())
	return support.Actor{UserID: c.Subject, IsAdmin: c.HasRole(models.RoleAdministrator)}
}

// int64Param reads a numeric path parameter. Non-numeric ids cannot exist,
// so they report not found.
func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("not found")
	}
	return id, nil
}

func CreateTicket(svc *support.TicketService, users UserByID, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in support.NewTicket
		if !decodeJSON(w, r, &in) {
			return
		}
		actor := actorFrom(r)
		u, err := users.ByID(r.Context(), actor.UserID)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		actor.Email = u.Email
		t, err := svc.Create(r.Context(), actor, in)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, actor.UserID, "support.ticket.create", map[string]any{"ticket_id": t.ID})
		respondStatus(w, http.StatusCreated, map[string]any{
			"success":   true,
			"message":   "Support ticket submitted successfully",
			"ticket_id": t.ID,
		})
	}
}

func ListMyTickets(svc *support.TicketService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListMine(r.Context(), actorFrom(r))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "tickets": rows})
	}
}

func GetTicket(svc *support.TicketService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			writeError(w, lg, err)
			return
		}
		t, err := svc.Get(r.Context(), actorFrom(r), id)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "ticket": t})
	}
}

// UpdateTicket serves both the owner route and the admin route; the
// service decides which fields the caller may touch.
func UpdateTicket(svc *support.TicketService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			writeError(w, lg, err)
			return
		}
		var p support.TicketPatch
		if !decodeJSON(w, r, &p) {
			return
		}
		actor := actorFrom(r)
		t, err := svc.Update(r.Context(), actor, id, p)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, actor.UserID, "support.ticket.update", map[string]any{"ticket_id": t.ID, "status": t.Status})
		respondJSON(w, map[string]any{"success": true, "ticket": t})
	}
}

func AdminListTickets(svc *support.TicketService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rows, err := svc.ListAll(r.Context(), support.TicketFilter{
			Status:   models.TicketStatus(q.Get("status")),
			Priority: models.TicketPriority(q.Get("priority")),
		})
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "tickets": rows})
	}
}

func ListFAQs(svc *support.FAQService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		groups, err := svc.List(r.Context(), models.FAQCategory(q.Get("category")), q.Get("search"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "categories": groups})
	}
}

func GetFAQ(svc *support.FAQService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			respondMessage(w, http.StatusNotFound, "FAQ not found")
			return
		}
		f, err := svc.Detail(r.Context(), id)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "faq": f})
	}
}

func CreateFAQ(svc *support.FAQService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in support.FAQInput
		if !decodeJSON(w, r, &in) {
			return
		}
		f, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "support.faq.create", map[string]any{"faq_id": f.ID})
		respondStatus(w, http.StatusCreated, map[string]any{"success": true, "faq": f})
	}
}

func UpdateFAQ(svc *support.FAQService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			writeError(w, lg, err)
			return
		}
		var p support.FAQPatch
		if !decodeJSON(w, r, &p) {
			return
		}
		f, err := svc.Update(r.Context(), id, p)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "support.faq.update", map[string]any{"faq_id": f.ID})
		respondJSON(w, map[string]any{"success": true, "faq": f})
	}
}

func DeactivateFAQ(svc *support.FAQService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			writeError(w, lg, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "support.faq.deactivate", map[string]any{"faq_id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}
