package api

import (
	"net/http"

	"tablekeep/internal/domain"
)

type createMenuItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

type addOrderItemRequest struct {
	AttendeeID int64 `json:"reservation_attendee_id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	item, err := h.svc.Orders.CreateMenuItem(r.Context(), &domain.MenuItem{
		Name: req.Name, Category: req.Category, IsAvailable: available,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) openOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.svc.Orders.Open(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req addOrderItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.svc.Orders.AddItem(r.Context(), id, req.AttendeeID, req.MenuItemID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) listOrderItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.svc.Orders.ListItems(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}
