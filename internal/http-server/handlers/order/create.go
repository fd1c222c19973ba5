package order

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
	CreatePublicOrder(ctx context.Context, req *entity.PublicOrderRequest) (*entity.OrderResult, error)
}

// CreatePublic accepts an order from the public digital menu.
func CreatePublic(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.PublicOrderRequest
		if err := render.Bind(r, &req); err != nil {
			logger.With(sl.Err(err)).Debug("bind order")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		logger = logger.With(slog.String("company_id", req.CompanyID))

		result, err := handler.CreatePublicOrder(r.Context(), &req)
		if err != nil {
			status := herr.Status(err)
			logger.With(sl.Err(err)).Error("create order")
			render.Status(r, status)
			if status == http.StatusServiceUnavailable {
				render.JSON(w, r, response.Error("Não foi possível validar o pagamento, tente novamente"))
				return
			}
			render.JSON(w, r, response.Error("Erro ao criar pedido"))
			return
		}

		logger.With(
			slog.String("order_id", result.OrderID),
			slog.Bool("duplicate", result.DuplicatePrevented),
		).Info("public order")
		render.JSON(w, r, result)
	}
}
