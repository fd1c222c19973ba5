package health

import (
	"MenuHub/internal/lib/api/response"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Status struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Clients int    `json:"ws_clients"`
}

type Feed interface {
	ClientCount() int
}

func Check(started time.Time, feed Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := Status{
			Status: "ok",
			Uptime: time.Since(started).Truncate(time.Second).String(),
		}
		if feed != nil {
			status.Clients = feed.ClientCount()
		}
		render.JSON(w, r, response.Ok(status))
	}
}
