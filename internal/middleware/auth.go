package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tablekeep/internal/domain"
)

// ActorResolver loads the identity triple for an authenticated subject.
type ActorResolver interface {
	Resolve(ctx context.Context, id int64) (domain.ContextActor, error)
}

// Authenticate validates the Bearer token, loads the actor it names and
// stores it in the request context together with the caller's origin address.
// Unknown actors get 401; suspended or lapsed actors get 403.
func Authenticate(validator JWTValidator, actors ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized: provide a valid Bearer token")
				return
			}
			claims, err := validator.Validate(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized: invalid token")
				return
			}
			id, err := claims.ActorID()
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized: invalid token subject")
				return
			}

			actor, err := actors.Resolve(r.Context(), id)
			if err != nil {
				var nf *domain.NotFoundError
				if errors.As(err, &nf) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized: unknown actor")
					return
				}
				logger.ErrorContext(r.Context(), "resolve actor", "actor_id", id, "error", err,
					"request_id", RequestIDFromContext(r.Context()))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !actor.IsActive() {
				writeJSONError(w, http.StatusForbidden, "membership is not active")
				return
			}

			ctx := domain.WithActor(r.Context(), actor)
			ctx = domain.WithOriginAddress(ctx, clientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
