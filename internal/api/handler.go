// Package api provides the HTTP handlers for the reservation core.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"tablekeep/internal/service/booking"
	"tablekeep/internal/service/governance"
	"tablekeep/internal/service/manifest"
	"tablekeep/internal/service/messaging"
	"tablekeep/internal/service/ordering"
	"tablekeep/internal/service/security"
	"tablekeep/internal/service/venue"
)

// Services groups the service pointers the handlers call.
type Services struct {
	Reservations  *booking.Service
	Manifest      *manifest.Reconciler
	Members       *manifest.MemberService
	Messages      *messaging.Service
	Notifications *messaging.NotificationService
	Policy        *security.PolicyService
	Actors        *security.ActorService
	Audit         *governance.AuditService
	Venues        *venue.Service
	Orders        *ordering.Service
}

// Handler serves the authenticated /v1 API.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger.With("component", "api")}
}

// Routes registers every /v1 endpoint on r. Authentication is applied by the caller.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.createReservation)
		r.Get("/", h.listReservations)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getReservation)
			r.Patch("/", h.updateReservation)
			r.Delete("/", h.deleteReservation)
			r.Post("/status", h.transitionReservation)
			r.Get("/attendees", h.listAttendees)
			r.Put("/attendees", h.syncAttendees)
			r.Post("/attendees", h.addAttendee)
			r.Post("/orders", h.openOrder)
			r.Get("/messages", h.listMessages)
			r.Post("/messages", h.sendMessage)
		})
	})
	r.Route("/attendees/{id}", func(r chi.Router) {
		r.Patch("/", h.updateAttendee)
		r.Delete("/", h.removeAttendee)
	})

	r.Get("/policy", h.getPolicy)
	r.Put("/policy", h.replacePolicy)
	r.Get("/audit", h.listAudit)

	r.Get("/me", h.getMe)
	r.Get("/users/{id}", h.getUser)
	r.Patch("/users/{id}", h.updateUser)

	r.Get("/members", h.listMembers)
	r.Post("/members", h.createMember)
	r.Get("/members/{id}", h.getMember)
	r.Patch("/members/{id}", h.updateMember)
	r.Delete("/members/{id}", h.deleteMember)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Get("/unread-count", h.unreadNotificationCount)
		r.Post("/read-all", h.markAllNotificationsRead)
		r.Post("/{id}/read", h.markNotificationRead)
		r.Delete("/{id}", h.deleteNotification)
	})

	r.Get("/dining-rooms", h.listDiningRooms)
	r.Post("/dining-rooms", h.createDiningRoom)
	r.Get("/dining-rooms/{id}", h.getDiningRoom)
	r.Patch("/dining-rooms/{id}", h.setDiningRoomActive)
	r.Get("/dining-rooms/{id}/tables", h.listTables)
	r.Post("/dining-rooms/{id}/tables", h.createTable)
	r.Get("/tables/{id}", h.getTable)
	r.Get("/tables/{id}/seats", h.listSeats)

	r.Post("/menu-items", h.createMenuItem)
	r.Get("/orders/{id}/items", h.listOrderItems)
	r.Post("/orders/{id}/items", h.addOrderItem)
}
