package api

import (
	"MenuHub/entity"
	"MenuHub/internal/ws"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubHandler struct{}

func (stubHandler) AuthenticateByKey(key string) (*entity.UserAuth, error) {
	if key == "secret" {
		return &entity.UserAuth{Username: "admin", Token: key}, nil
	}
	return nil, errors.New("invalid key")
}

func (s stubHandler) ValidateToken(token string) (*entity.UserAuth, error) {
	return s.AuthenticateByKey(token)
}

func (stubHandler) HandleWebhook(context.Context, []byte) (*entity.WebhookResult, error) {
	return &entity.WebhookResult{Status: entity.WebhookStatusSuppressed}, nil
}

func (stubHandler) CreatePublicOrder(context.Context, *entity.PublicOrderRequest) (*entity.OrderResult, error) {
	return &entity.OrderResult{Success: true, OrderID: "o-1", Number: 1}, nil
}

func (stubHandler) HandleNfce(_ context.Context, req *entity.NfceRequest) (*entity.NfceResult, error) {
	return &entity.NfceResult{Ref: req.Ref, Status: "autorizado"}, nil
}

func (stubHandler) SendPasswordReset(context.Context, string) error { return nil }

func (stubHandler) SendConfirmation(context.Context, string) error { return nil }

func (stubHandler) ListChats(context.Context, string, int, int) ([]entity.Chat, error) {
	return []entity.Chat{}, nil
}

func (stubHandler) GetChatMessages(context.Context, string, string, int, int) ([]entity.ChatMessage, error) {
	return nil, nil
}

func (stubHandler) SetChatPaused(context.Context, string, string, bool) error { return nil }

func (stubHandler) SendChatMessage(_ context.Context, companyID, chatID, text string) (*entity.ChatMessage, error) {
	return &entity.ChatMessage{CompanyID: companyID, ChatID: chatID, Content: text}, nil
}

func (stubHandler) GenerateApiKey(username, _ string) (string, error) {
	return "key-" + username, nil
}

func TestRoutes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(log, stubHandler{}, ws.NewHub(log))

	order := `{"companyId":"c","cliente":{"nome":"Ana","telefone":"11988887777"},"carrinho":[{"produto_id":"p","nome":"X","quantidade":1,"preco":10}],"tipo":"retirada","pagamento":"pix","total":10}`
	nfce := `{"action":"consultar-nfce","company_id":"c","ref":"r"}`

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		status int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound},
		{"webhook get", http.MethodGet, "/webhook", "", "", http.StatusMethodNotAllowed},
		{"webhook post", http.MethodPost, "/webhook", `{"instance_key":"i"}`, "", http.StatusOK},
		{"public order without key", http.MethodPost, "/functions/v1/criar-pedido-publico", order, "", http.StatusOK},
		{"password reset without key", http.MethodPost, "/functions/v1/send-password-reset", `{"email":"a@b.com"}`, "", http.StatusOK},
		{"confirmation without key", http.MethodPost, "/functions/v1/send-confirmation-email", `{"email":"a@b.com"}`, "", http.StatusOK},
		{"nfce requires key", http.MethodPost, "/functions/v1/focus-nfe-integration", nfce, "", http.StatusUnauthorized},
		{"nfce with key", http.MethodPost, "/functions/v1/focus-nfe-integration", nfce, "secret", http.StatusOK},
		{"chats require key", http.MethodGet, "/api/v1/chats?company_id=c", "", "", http.StatusUnauthorized},
		{"chats with key", http.MethodGet, "/api/v1/chats?company_id=c", "", "secret", http.StatusOK},
		{"pause", http.MethodPost, "/api/v1/chats/c/5511@s.whatsapp.net/pause", `{"paused":true}`, "secret", http.StatusOK},
		{"send", http.MethodPost, "/api/v1/chats/c/5511@s.whatsapp.net/send", `{"text":"oi"}`, "secret", http.StatusOK},
		{"new key", http.MethodPost, "/api/v1/key/new", `{"username":"maria"}`, "secret", http.StatusOK},
		{"ws without token", http.MethodGet, "/api/v1/ws", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
