package focusnfe

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// alreadySentMarkers identify rejections for a reference Focus NFe already knows.
var alreadySentMarkers = []string{"ja foi", "já foi", "already", "em processamento", "duplicad"}

// Client issues and queries NFC-e documents on Focus NFe.
type Client struct {
	productionUrl   string
	homologationUrl string
	client          *http.Client
	log             *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) *Client {
	timeout := conf.FocusNfe.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		productionUrl:   strings.TrimRight(conf.FocusNfe.ProductionUrl, "/"),
		homologationUrl: strings.TrimRight(conf.FocusNfe.HomologationUrl, "/"),
		client:          &http.Client{Timeout: timeout},
		log:             logger.With(sl.Module("focusnfe")),
	}
}

// ApiError is a non-2xx answer from Focus NFe.
type ApiError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"codigo"`
	Message    string `json:"mensagem"`
	Body       string `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("focus nfe %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("focus nfe %d: %s", e.StatusCode, e.Body)
}

func (e *ApiError) alreadySent() bool {
	text := strings.ToLower(e.Message + " " + e.Body)
	for _, marker := range alreadySentMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Issue sends the document and falls back to a query when the reference was already submitted.
func (c *Client) Issue(ctx context.Context, settings *entity.FiscalSettings, ref string, payload map[string]any) (*entity.NfceResult, error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal nfce payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/nfce?ref=%s", c.baseUrl(settings), url.QueryEscape(ref))
	result, err := c.do(ctx, http.MethodPost, endpoint, settings.Token, body)
	if err == nil {
		result.Ref = ref
		return result, nil
	}

	var apiErr *ApiError
	if !errors.As(err, &apiErr) || !apiErr.alreadySent() {
		return nil, err
	}

	c.log.With(
		slog.String("company_id", settings.CompanyID),
		slog.String("ref", ref),
	).Info("reference already sent, querying status")

	result, err = c.query(ctx, settings, ref, false)
	if err != nil {
		return nil, err
	}
	result.FellBack = true
	return result, nil
}

// Query returns the full state of a reference.
func (c *Client) Query(ctx context.Context, settings *entity.FiscalSettings, ref string) (*entity.NfceResult, error) {
	return c.query(ctx, settings, ref, true)
}

func (c *Client) query(ctx context.Context, settings *entity.FiscalSettings, ref string, complete bool) (*entity.NfceResult, error) {
	endpoint := fmt.Sprintf("%s/v2/nfce/%s", c.baseUrl(settings), url.PathEscape(ref))
	if complete {
		endpoint += "?completa=1"
	}
	result, err := c.do(ctx, http.MethodGet, endpoint, settings.Token, nil)
	if err != nil {
		return nil, err
	}
	result.Ref = ref
	return result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body []byte) (*entity.NfceResult, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(token, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("focus nfe request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read focus nfe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &ApiError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		_ = json.Unmarshal(raw, apiErr)
		return nil, apiErr
	}

	var result entity.NfceResult
	if err = json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode focus nfe response: %w", err)
	}
	_ = json.Unmarshal(raw, &result.Raw)
	return &result, nil
}

func (c *Client) baseUrl(settings *entity.FiscalSettings) string {
	if settings.Environment == entity.FiscalEnvProduction {
		return c.productionUrl
	}
	return c.homologationUrl
}

func checkPayload(payload map[string]any) error {
	for _, key := range []string{"items", "formas_pagamento"} {
		list, ok := payload[key].([]any)
		if !ok || len(list) == 0 {
			return fmt.Errorf("%w: %s must be a non-empty list", entity.ErrInvalidPayload, key)
		}
	}
	return nil
}
