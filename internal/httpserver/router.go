package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/connector"
	"evmeri/internal/httpserver/handlers"
	"evmeri/internal/models"
	"evmeri/internal/payment"
	"evmeri/internal/station"
	"evmeri/internal/support"
)

type Sessions interface {
	handlers.SessionStore
	auth.SessionChecker
}

type AuditStore interface {
	handlers.Auditor
	handlers.AuditReader
}

// Deps is everything the routes need, built once in main.
type Deps struct {
	Users      handlers.Accounts
	Sessions   Sessions
	Audit      AuditStore
	Stations   handlers.StationStore
	Locator    *station.Locator
	Reviews    *station.ReviewService
	Favorites  *station.Favorites
	Connectors *connector.Service
	Payments   *payment.Service
	Tickets    *support.TicketService
	FAQs       *support.FAQService
	Signer     *auth.Signer
	InitData   *auth.InitDataVerifier
}

func NewRouter(d Deps, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Post("/api/auth/register", handlers.Register(d.Users, lg))
	r.Post("/api/auth/login", handlers.Login(d.Users, d.Sessions, d.Signer, d.Audit, lg))
	if d.InitData != nil {
		r.Post("/api/auth/telegram", handlers.TelegramLogin(d.Users, d.Sessions, d.Signer, d.InitData, d.Audit, lg))
	}
	r.Route("/api/stations/public", func(pub chi.Router) {
		pub.Get("/stations/", handlers.PublicStations(d.Locator, lg))
		pub.Get("/stations/{id}/", handlers.PublicStation(d.Locator, lg))
		pub.Get("/stations/{id}/reviews/", handlers.ListReviews(d.Reviews, lg))
		pub.Get("/nearby-stations/", handlers.NearbyStations(d.Locator, lg))
		pub.Get("/search-stations/", handlers.SearchStations(d.Locator, lg))
	})
	r.Get("/api/support/faqs/", handlers.ListFAQs(d.FAQs, lg))
	r.Get("/api/support/faqs/{id}/", handlers.GetFAQ(d.FAQs, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(d.Signer, d.Sessions))
		protected.Get("/api/auth/me", handlers.Me(d.Users, lg))
		protected.Post("/api/auth/logout", handlers.Logout(d.Sessions, d.Audit, lg))
		protected.Get("/api/logs", handlers.MyLogs(d.Audit, lg))

		protected.Post("/api/stations/stations/{id}/reviews/", handlers.CreateReview(d.Reviews, d.Audit, lg))
		protected.Get("/api/stations/favorites/", handlers.ListFavorites(d.Favorites, lg))
		protected.Post("/api/stations/favorites/{station_id}/toggle/", handlers.ToggleFavorite(d.Favorites, lg))

		protected.Route("/api/stations/owner", func(owner chi.Router) {
			owner.Post("/profile", handlers.BecomeOwner(d.Stations, d.Audit, lg))
			owner.Get("/stations", handlers.ListStations(d.Stations, lg))
			owner.Post("/stations", handlers.CreateStation(d.Stations, d.Locator, d.Audit, lg))
			owner.Get("/stations/{station_id}", handlers.GetStation(d.Stations, lg))
			owner.Patch("/stations/{station_id}", handlers.UpdateStation(d.Stations, d.Locator, d.Audit, lg))
			owner.Delete("/stations/{station_id}", handlers.DeleteStation(d.Stations, d.Locator, d.Audit, lg))
			owner.Post("/reviews/{review_id}/reply", handlers.ReplyToReview(d.Reviews, d.Audit, lg))
			owner.Get("/stations/{station_id}/connectors/", handlers.ListConnectors(d.Connectors, lg))
			owner.Post("/stations/{station_id}/connectors/", handlers.CreateConnector(d.Connectors, d.Audit, lg))
			owner.Get("/stations/{station_id}/connectors/{connector_id}", handlers.GetConnector(d.Connectors, lg))
			owner.Patch("/stations/{station_id}/connectors/{connector_id}", handlers.UpdateConnector(d.Connectors, d.Audit, lg))
			owner.Delete("/stations/{station_id}/connectors/{connector_id}", handlers.DeleteConnector(d.Connectors, d.Audit, lg))
		})

		protected.Get("/api/payments/qr-initiate/{qr_token}/", handlers.QRLookup(d.Payments, lg))
		protected.Post("/api/payments/qr-initiate/{qr_token}/", handlers.QRInitiate(d.Payments, d.Audit, lg))

		protected.Post("/api/support/tickets/", handlers.CreateTicket(d.Tickets, d.Users, d.Audit, lg))
		protected.Get("/api/support/tickets/", handlers.ListMyTickets(d.Tickets, lg))
		protected.Get("/api/support/tickets/{id}/", handlers.GetTicket(d.Tickets, lg))
		protected.Patch("/api/support/tickets/{id}/", handlers.UpdateTicket(d.Tickets, d.Audit, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(models.RoleAdministrator))
			admin.Get("/api/admin/users", handlers.ListUsers(d.Users, lg))
			admin.Post("/api/admin/users", handlers.CreateUser(d.Users, d.Audit, lg))
			admin.Patch("/api/admin/users/{id}", handlers.UpdateUser(d.Users, d.Audit, lg))
			admin.Delete("/api/admin/users/{id}", handlers.DeleteUser(d.Users, d.Audit, lg))
			admin.Get("/api/admin/support/tickets/", handlers.AdminListTickets(d.Tickets, lg))
			admin.Patch("/api/admin/support/tickets/{id}/", handlers.UpdateTicket(d.Tickets, d.Audit, lg))
			admin.Post("/api/admin/faqs/", handlers.CreateFAQ(d.FAQs, d.Audit, lg))
			admin.Patch("/api/admin/faqs/{id}/", handlers.UpdateFAQ(d.FAQs, d.Audit, lg))
			admin.Delete("/api/admin/faqs/{id}/", handlers.DeactivateFAQ(d.FAQs, d.Audit, lg))
		})
	})
	return r
}
