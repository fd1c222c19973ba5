package crm

import (
	"MenuHub/entity"
	herr "MenuHub/internal/http-server/handlers/errors"
	"MenuHub/internal/lib/api/response"
	"MenuHub/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Core defines the methods required by the dashboard chat handlers.
type Core interface {
	ListChats(ctx context.Context, companyID string, limit, offset int) ([]entity.Chat, error)
	GetChatMessages(ctx context.Context, companyID, chatID string, limit, offset int) ([]entity.ChatMessage, error)
	SetChatPaused(ctx context.Context, companyID, chatID string, paused bool) error
	SendChatMessage(ctx context.Context, companyID, chatID, text string) (*entity.ChatMessage, error)
}

func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func failed(w http.ResponseWriter, r *http.Request, err error, message string) {
	render.Status(r, herr.Status(err))
	render.JSON(w, r, response.Error(message))
}

// GetChats lists a company's chats, most recent first.
func GetChats(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := r.URL.Query().Get("company_id")
		if companyID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("company_id is required"))
			return
		}
		if !herr.CompanyAllowed(w, r, companyID) {
			return
		}

		limit, offset := pagination(r)
		chats, err := handler.ListChats(r.Context(), companyID, limit, offset)
		if err != nil {
			log.With(sl.Module("http.handlers.crm"), sl.Err(err)).Error("list chats")
			failed(w, r, err, "Failed to get chats")
			return
		}

		if chats == nil {
			chats = []entity.Chat{}
		}
		render.JSON(w, r, response.Ok(chats))
	}
}

// GetMessages returns paginated message history for a chat.
func GetMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "company_id")
		chatID := chi.URLParam(r, "chat_id")
		if !herr.CompanyAllowed(w, r, companyID) {
			return
		}

		limit, offset := pagination(r)
		messages, err := handler.GetChatMessages(r.Context(), companyID, chatID, limit, offset)
		if err != nil {
			log.With(
				sl.Module("http.handlers.crm"),
				slog.String("chat_id", chatID),
				sl.Err(err),
			).Error("get chat messages")
			failed(w, r, err, "Failed to get messages")
			return
		}

		if messages == nil {
			messages = []entity.ChatMessage{}
		}
		render.JSON(w, r, response.Ok(messages))
	}
}

// SetPause turns automated replies off or back on for a chat.
func SetPause(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "company_id")
		chatID := chi.URLParam(r, "chat_id")
		if !herr.CompanyAllowed(w, r, companyID) {
			return
		}

		var req entity.PauseRequest
		if err := render.Bind(r, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := handler.SetChatPaused(r.Context(), companyID, chatID, req.Paused); err != nil {
			log.With(
				sl.Module("http.handlers.crm"),
				slog.String("chat_id", chatID),
				sl.Err(err),
			).Error("set chat pause")
			failed(w, r, err, "Failed to update chat")
			return
		}

		render.JSON(w, r, response.Ok(map[string]bool{"ai_paused": req.Paused}))
	}
}

// SendMessage lets a manager answer a chat through the company's gateway.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "company_id")
		chatID := chi.URLParam(r, "chat_id")
		if !herr.CompanyAllowed(w, r, companyID) {
			return
		}

		var req entity.SendTextRequest
		if err := render.Bind(r, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("text is required"))
			return
		}

		msg, err := handler.SendChatMessage(r.Context(), companyID, chatID, req.Text)
		if err != nil {
			log.With(
				sl.Module("http.handlers.crm"),
				slog.String("company_id", companyID),
				slog.String("chat_id", chatID),
				sl.Err(err),
			).Error("send chat message")
			failed(w, r, err, "Failed to send message")
			return
		}

		render.JSON(w, r, response.Ok(msg))
	}
}
