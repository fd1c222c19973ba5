package nfce

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
	HandleNfce(ctx context.Context, req *entity.NfceRequest) (*entity.NfceResult, error)
}

// Integration issues (gerar-nfce) or queries (consultar-nfce) an NFC-e.
func Integration(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.nfce"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.NfceRequest
		if err := render.Bind(r, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		logger = logger.With(
			slog.String("action", req.Action),
			slog.String("company_id", req.CompanyID),
			slog.String("ref", req.Ref),
		)
		if !herr.CompanyAllowed(w, r, req.CompanyID) {
			logger.Warn("company outside key scope")
			return
		}

		result, err := handler.HandleNfce(r.Context(), &req)
		if err != nil {
			status := herr.Status(err)
			if status == http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			logger.With(sl.Err(err)).Error("nfce request failed")
			render.Status(r, status)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.With(slog.String("status", result.Status)).Info("nfce request")
		render.JSON(w, r, response.Ok(result))
	}
}
