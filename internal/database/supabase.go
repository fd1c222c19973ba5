package repository

import (
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/supabase-go"
)

const (
	integrationsTable = "whatsapp_integrations"
	chatsTable        = "whatsapp_chats"
	messagesTable     = "whatsapp_messages"
	aiLogsTable       = "ai_conversation_logs"
	customersTable    = "clientes"
	ordersTable       = "pedidos"
	orderItemsTable   = "itens_pedido"
	orderAddonsTable  = "itens_pedido_adicionais"
	fiscalTable       = "fiscal_settings"
	nfceTable         = "notas_fiscais"

	touchChatRpc = "touch_whatsapp_chat"
)

// Supabase talks to the platform database through PostgREST and GoTrue.
type Supabase struct {
	client     *supabase.Client
	serviceKey string
	log        *slog.Logger
}

func NewSupabaseClient(conf *config.Config, logger *slog.Logger) (*Supabase, error) {
	client, err := supabase.NewClient(conf.Supabase.Url, conf.Supabase.ServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &Supabase{
		client:     client,
		serviceKey: conf.Supabase.ServiceKey,
		log:        logger.With(sl.Module("supabase")),
	}, nil
}

// rpcError is the PostgREST error object returned in place of a result.
type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// decodeRpc turns the raw body returned by client.Rpc into out.
// The client reports transport failures as an empty body and database
// failures as an error object, so both are mapped to errors here.
func decodeRpc(name, body string, out interface{}) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("rpc %s: empty response", name)
	}
	if strings.HasPrefix(body, "{") {
		var rErr rpcError
		if err := json.Unmarshal([]byte(body), &rErr); err == nil && rErr.Message != "" && rErr.Code != "" {
			return fmt.Errorf("rpc %s: %s (%s)", name, rErr.Message, rErr.Code)
		}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("rpc %s: decode %q: %w", name, body, err)
	}
	return nil
}

// decodeRpcRows accepts the three shapes a set-returning function may
// produce through PostgREST: null, one object or an array of objects.
func decodeRpcRows[T any](name, body string) ([]T, error) {
	var raw any
	if err := decodeRpc(name, body, &raw); err != nil {
		return nil, err
	}
	switch raw.(type) {
	case nil:
		return nil, nil
	case []any:
		var rows []T
		if err := decodeRpc(name, body, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	default:
		var row T
		if err := decodeRpc(name, body, &row); err != nil {
			return nil, err
		}
		return []T{row}, nil
	}
}

var errNoRows = errors.New("no rows")

func first[T any](rows []T) (*T, error) {
	if len(rows) == 0 {
		return nil, errNoRows
	}
	return &rows[0], nil
}
