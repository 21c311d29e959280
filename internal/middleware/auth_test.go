package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/domain"
)

type fakeResolver map[int64]domain.ContextActor

func (f fakeResolver) Resolve(_ context.Context, id int64) (domain.ContextActor, error) {
	if id == 500 {
		return domain.ContextActor{}, errors.New("database is locked")
	}
	a, ok := f[id]
	if !ok {
		return domain.ContextActor{}, domain.ErrNotFound("actor %d not found", id)
	}
	return a, nil
}

func authHandler(t *testing.T) (http.Handler, *domain.ContextActor, *string) {
	t.Helper()
	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	actors := fakeResolver{
		1: {ID: 1, Role: domain.RoleMember, MembershipStatus: domain.MembershipActive},
		2: {ID: 2, Role: domain.RoleStaff, MembershipStatus: domain.MembershipSuspended},
	}
	var got domain.ContextActor
	var origin string
	h := Authenticate(v, actors, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := domain.ActorFromContext(r.Context())
		require.True(t, ok)
		got = a
		origin = domain.OriginAddressFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &got, &origin
}

func bearer(t *testing.T, actorID int64) string {
	t.Helper()
	tok, err := MintToken(testSecret, actorID, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthenticate_ActiveActor(t *testing.T) {
	h, got, origin := authHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, domain.RoleMember, got.Role)
	assert.Equal(t, "198.51.100.7", *origin)
}

func TestAuthenticate_Failures(t *testing.T) {
	h, _, _ := authHandler(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "unknown actor", header: bearer(t, 99), want: http.StatusUnauthorized},
		{name: "suspended actor", header: bearer(t, 2), want: http.StatusForbidden},
		{name: "resolver failure", header: bearer(t, 500), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.InDelta(t, float64(tt.want), body["code"], 0.001)
			assert.NotEmpty(t, body["message"])
		})
	}
}
