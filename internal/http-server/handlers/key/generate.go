package key

import (
	"MenuHub/entity"
	herr "MenuHub/internal/http-server/handlers/errors"
	"MenuHub/internal/lib/api/cont"
	"MenuHub/internal/lib/api/response"
	"MenuHub/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	GenerateApiKey(username, companyID string) (string, error)
}

func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.key"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := cont.GetUser(r.Context())
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		var req entity.KeyRequest
		if err = render.Bind(r, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		// a company key can only issue keys for its own company
		if user.CompanyID != "" {
			if req.CompanyID == "" {
				req.CompanyID = user.CompanyID
			}
			if !user.CanAccess(req.CompanyID) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Forbidden"))
				return
			}
		}

		key, err := handler.GenerateApiKey(req.Username, req.CompanyID)
		if err != nil {
			logger.With(sl.Err(err)).Error("generate api key")
			render.Status(r, herr.Status(err))
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}

		logger.With(
			slog.String("issued_by", user.Username),
			slog.String("username", req.Username),
			slog.String("company_id", req.CompanyID),
		).Info("api key issued")
		render.JSON(w, r, response.Ok(entity.UserAuth{Username: req.Username, Token: key, CompanyID: req.CompanyID}))
	}
}
