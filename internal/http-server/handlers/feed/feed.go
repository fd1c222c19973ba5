package feed

import (
	"MenuHub/internal/ws"
	"log/slog"
	"net/http"
)

// Connect upgrades the request to the dashboard live feed.
func Connect(log *slog.Logger, hub *ws.Hub, auth ws.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, auth, log, w, r)
	}
}
