package api

import (
	"encoding/json"
	"net/http"

	"tablekeep/internal/domain"
)

type syncAttendeesRequest struct {
	Attendees []domain.AttendeeInput `json:"attendees"`
}

type syncAttendeesResponse struct {
	Attendees []domain.Attendee     `json:"attendees"`
	Change    domain.ManifestChange `json:"change"`
}

type createMemberRequest struct {
	UserID              int64           `json:"user_id"`
	Name                string          `json:"name"`
	Relation            *string         `json:"relation"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions"`
}

type updateMemberRequest struct {
	Name                *string         `json:"name"`
	Relation            *string         `json:"relation"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions"`
}

func (h *Handler) listAttendees(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.svc.Manifest.List(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Attendee{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// syncAttendees replaces the whole manifest with the submitted list.
func (h *Handler) syncAttendees(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req syncAttendeesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Attendees == nil {
		h.badRequest(w, r, "attendees", "attendees is required; send [] to clear the manifest")
		return
	}
	items, change, err := h.svc.Manifest.Sync(r.Context(), id, req.Attendees)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncAttendeesResponse{Attendees: items, Change: change})
}

func (h *Handler) addAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in domain.AttendeeInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.svc.Manifest.Add(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) updateAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in domain.AttendeeInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.svc.Manifest.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) removeAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Manifest.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Members.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.MemberProfile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Members.Create(r.Context(), &domain.MemberProfile{
		OwnerID:             req.UserID,
		Name:                req.Name,
		Relation:            req.Relation,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Members.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Members.Update(r.Context(), id, domain.MemberUpdate{
		Name:                req.Name,
		Relation:            req.Relation,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Members.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
