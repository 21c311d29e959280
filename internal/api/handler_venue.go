package api

import (
	"net/http"

	"tablekeep/internal/domain"
)

type createDiningRoomRequest struct {
	Name          string `json:"name"`
	LegalCapacity int    `json:"legal_capacity"`
	IsActive      *bool  `json:"is_active"`
	DisplayOrder  int    `json:"display_order"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type createTableRequest struct {
	TableNumber string `json:"table_number"`
	SeatCount   int    `json:"seat_count"`
}

func (h *Handler) listDiningRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.Venues.ListDiningRooms(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []domain.DiningRoom{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rooms})
}

func (h *Handler) createDiningRoom(w http.ResponseWriter, r *http.Request) {
	var req createDiningRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	room, err := h.svc.Venues.CreateDiningRoom(r.Context(), &domain.DiningRoom{
		Name:          req.Name,
		LegalCapacity: req.LegalCapacity,
		IsActive:      active,
		DisplayOrder:  req.DisplayOrder,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) getDiningRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.svc.Venues.GetDiningRoom(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) setDiningRoomActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.IsActive == nil {
		h.badRequest(w, r, "is_active", "is_active is required")
		return
	}
	room, err := h.svc.Venues.SetDiningRoomActive(r.Context(), id, *req.IsActive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tables, err := h.svc.Venues.ListTables(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tables == nil {
		tables = []domain.Table{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tables})
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req createTableRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Venues.CreateTable(r.Context(), &domain.Table{
		DiningRoomID: id,
		TableNumber:  req.TableNumber,
		SeatCount:    req.SeatCount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Venues.GetTable(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) listSeats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	seats, err := h.svc.Venues.ListSeats(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if seats == nil {
		seats = []domain.Seat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": seats})
}
