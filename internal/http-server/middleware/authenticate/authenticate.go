package authenticate

import (
	"MenuHub/entity"
	"MenuHub/internal/lib/api/cont"
	"MenuHub/internal/lib/api/response"
	"MenuHub/internal/lib/sl"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Authenticate interface {
	AuthenticateByKey(key string) (*entity.UserAuth, error)
}

// New accepts "Authorization: Bearer <key>" or an "X-API-Key" header.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			logger := log.With(
				mod,
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := bearer(r.Header.Get("Authorization"))
			if token == "" {
				token = strings.TrimSpace(r.Header.Get("X-API-Key"))
			}
			if token == "" {
				authFailed(w, r, "Token not found")
				return
			}

			if auth == nil {
				authFailed(w, r, "Unauthorized: authentication not enabled")
				return
			}

			user, err := auth.AuthenticateByKey(token)
			if err != nil {
				logger.With(sl.Secret("token", token), sl.Err(err)).Debug("authentication failed")
				authFailed(w, r, "Unauthorized: token not found")
				return
			}

			w.Header().Set("X-User", user.Username)
			next.ServeHTTP(w, r.WithContext(cont.PutUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
