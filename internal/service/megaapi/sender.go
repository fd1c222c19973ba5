package megaapi

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service sends WhatsApp messages through a MegaAPI-compatible gateway.
type Service struct {
	baseUrl string
	client  *http.Client
	log     *slog.Logger
}

func NewMegaApiService(conf *config.Config, logger *slog.Logger) *Service {
	if conf.MegaApi.BaseUrl == "" {
		return nil
	}
	timeout := conf.MegaApi.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		baseUrl: strings.TrimRight(conf.MegaApi.BaseUrl, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger.With(sl.Module("megaapi")),
	}
}

type sendRequest struct {
	MessageData struct {
		To   string `json:"to"`
		Text string `json:"text"`
	} `json:"messageData"`
}

type sendResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Key     struct {
		ID string `json:"id"`
	} `json:"key"`
	MessageID string `json:"messageId"`
}

// SendText delivers text to the chat and returns the provider message id when one is reported.
func (s *Service) SendText(ctx context.Context, integration *entity.Integration, to, text string) (string, error) {
	if integration == nil || integration.InstanceKey == "" {
		return "", fmt.Errorf("integration without instance key")
	}

	endpoint := fmt.Sprintf("%s/rest/sendMessage/%s/text", s.baseUrl, url.PathEscape(integration.InstanceKey))

	var body sendRequest
	body.MessageData.To = to
	body.MessageData.Text = text

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+integration.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send HTTP: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway responded with %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed sendResponse
	if len(raw) > 0 && json.Unmarshal(raw, &parsed) == nil {
		if parsed.Error {
			return "", fmt.Errorf("gateway rejected message: %s", parsed.Message)
		}
	}

	s.log.With(
		slog.String("instance", integration.InstanceKey),
		slog.String("to", to),
	).Info("message sent")

	if parsed.Key.ID != "" {
		return parsed.Key.ID, nil
	}
	return parsed.MessageID, nil
}
