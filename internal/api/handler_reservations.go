package api

import (
	"net/http"

	"tablekeep/internal/domain"
)

type createReservationRequest struct {
	UserID        int64                  `json:"user_id"`
	DiningRoomID  int64                  `json:"dining_room_id"`
	TableID       int64                  `json:"table_id"`
	Date          string                 `json:"date"`
	MealType      string                 `json:"meal_type"`
	StartTime     string                 `json:"start_time"`
	EndTime       string                 `json:"end_time"`
	Notes         *string                `json:"notes"`
	AttendeeCount int                    `json:"attendee_count"`
	Attendees     []domain.AttendeeInput `json:"attendees"`
}

type updateReservationRequest struct {
	DiningRoomID *int64  `json:"dining_room_id"`
	TableID      *int64  `json:"table_id"`
	Date         *string `json:"date"`
	MealType     *string `json:"meal_type"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Notes        *string `json:"notes"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Reservations.Create(r.Context(), domain.BookingRequest{
		OwnerID:       req.UserID,
		DiningRoomID:  req.DiningRoomID,
		TableID:       req.TableID,
		Date:          req.Date,
		MealType:      req.MealType,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Notes:         req.Notes,
		AttendeeCount: req.AttendeeCount,
		Attendees:     req.Attendees,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := domain.ReservationFilter{
		Date:     r.URL.Query().Get("date"),
		MealType: r.URL.Query().Get("meal_type"),
		Page:     page,
	}
	if filter.OwnerID, err = queryInt64(r, "user_id"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if filter.DiningRoomID, err = queryInt64(r, "dining_room_id"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseReservationStatus(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Status = &st
	}

	items, total, err := h.svc.Reservations.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(items, page, total))
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Reservations.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) updateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Reservations.Update(r.Context(), id, domain.ReservationUpdate(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) transitionReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := domain.ParseReservationStatus(req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Reservations.Transition(r.Context(), id, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Reservations.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
