package api

import (
	"net/http"

	"tablekeep/internal/domain"
)

type updateUserRequest struct {
	Role             *domain.Role             `json:"role"`
	MembershipStatus *domain.MembershipStatus `json:"membership_status"`
	GuestAllowance   *int                     `json:"guest_allowance"`
	Name             *string                  `json:"name"`
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Policy.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) replacePolicy(w http.ResponseWriter, r *http.Request) {
	var m domain.PolicyMatrix
	if err := decodeJSON(r, &m); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Policy.Replace(r.Context(), m); err != nil {
		h.writeError(w, r, err)
		return
	}
	current, err := h.svc.Policy.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := domain.AuditFilter{
		Action:       queryString(r, "action"),
		ResourceType: queryString(r, "resource_type"),
		ResourceID:   queryString(r, "resource_id"),
		Page:         page,
	}
	if filter.ActorID, err = queryInt64(r, "actor_id"); err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, total, err := h.svc.Audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(entries, page, total))
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := domain.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, r, domain.ErrAccessDenied("no authenticated actor"))
		return
	}
	a, err := h.svc.Actors.Get(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.svc.Actors.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.svc.Actors.AdminUpdate(r.Context(), id, domain.ActorUpdate(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
