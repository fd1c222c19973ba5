package email

import (
	"MenuHub/entity"
	herr "MenuHub/internal/http-server/handlers/errors"
	"MenuHub/internal/lib/api/response"
	"MenuHub/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	SendPasswordReset(ctx context.Context, email string) error
	SendConfirmation(ctx context.Context, email string) error
}

func PasswordReset(log *slog.Logger, handler Core) http.HandlerFunc {
	return send(log, handler.SendPasswordReset, "Se o e-mail estiver cadastrado, você receberá o link de redefinição")
}

func Confirmation(log *slog.Logger, handler Core) http.HandlerFunc {
	return send(log, handler.SendConfirmation, "E-mail de confirmação enviado")
}

func send(log *slog.Logger, sendFn func(ctx context.Context, email string) error, okMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.email"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.EmailRequest
		if err := render.Bind(r, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("E-mail inválido"))
			return
		}

		if err := sendFn(r.Context(), req.Email); err != nil {
			status := herr.Status(err)
			render.Status(r, status)
			switch status {
			case http.StatusTooManyRequests:
				render.JSON(w, r, response.Error("Muitas tentativas. Aguarde alguns minutos e tente novamente"))
			default:
				logger.With(sl.Err(err)).Error("send auth email")
				render.JSON(w, r, response.Error("Serviço de e-mail indisponível"))
			}
			return
		}

		render.JSON(w, r, response.Response{Success: true, Message: okMessage})
	}
}
