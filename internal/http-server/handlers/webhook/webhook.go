package webhook

import (
	"MenuHub/entity"
	herr "MenuHub/internal/http-server/handlers/errors"
	"MenuHub/internal/lib/api/response"
	"MenuHub/internal/lib/sl"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const maxBodySize = 1 << 20

type Core interface {
	HandleWebhook(ctx context.Context, body []byte) (*entity.WebhookResult, error)
}

// Receive handles a WhatsApp gateway callback.
func Receive(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.webhook"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		result, err := handler.HandleWebhook(r.Context(), body)
		if err != nil {
			status := herr.Status(err)
			if status >= http.StatusInternalServerError {
				logger.With(sl.Err(err)).Error("webhook failed")
			} else {
				logger.With(sl.Err(err)).Debug("webhook rejected")
			}
			render.Status(r, status)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.With(
			slog.String("status", result.Status),
			slog.String("chat_id", result.ChatID),
		).Debug("webhook handled")
		render.JSON(w, r, result)
	}
}
