package ws

import (
	"MenuHub/entity"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth map[string]*entity.UserAuth

func (a staticAuth) ValidateToken(token string) (*entity.UserAuth, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

type readMarks struct {
	mu    sync.Mutex
	marks []string
}

func (r *readMarks) MarkChatRead(_ context.Context, companyID, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, companyID+"/"+chatID)
	return nil
}

func (r *readMarks) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.marks)
}

func startHub(t *testing.T) (*Hub, *httptest.Server, *readMarks) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log)
	marks := &readMarks{}
	hub.SetHandler(marks)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	auth := staticAuth{
		"good":   {Username: "maria"},
		"pizzas": {Username: "joao", CompanyID: "c1"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, auth, log, w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, srv, marks
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 10*time.Millisecond)
}

func TestServeWsRejectsBadToken(t *testing.T) {
	_, srv, _ := startHub(t)

	for _, query := range []string{"", "token=bad"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestServeWsScopedToken(t *testing.T) {
	hub, srv, _ := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=pizzas&company_id=c2"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// without a company_id the token's own company applies
	conn := dial(t, srv, "token=pizzas")
	waitClients(t, hub, 1)

	hub.Broadcast("c2", "new_order", map[string]string{"pedido_id": "o-2"})
	hub.Broadcast("c1", "new_order", map[string]string{"pedido_id": "o-1"})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "c1", event.CompanyID)
}

func TestBroadcastFiltersByCompany(t *testing.T) {
	hub, srv, _ := startHub(t)

	all := dial(t, srv, "token=good")
	company1 := dial(t, srv, "token=good&company_id=c1")
	company2 := dial(t, srv, "token=good&company_id=c2")
	waitClients(t, hub, 3)

	hub.Broadcast("c1", "new_order", map[string]string{"pedido_id": "o-1"})

	for _, conn := range []*websocket.Conn{all, company1} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "new_order", event.Type)
		assert.Equal(t, "c1", event.CompanyID)
	}

	_ = company2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := company2.ReadMessage()
	assert.Error(t, err)
}

func TestMarkReadFromClient(t *testing.T) {
	hub, srv, marks := startHub(t)

	conn := dial(t, srv, "token=good&company_id=c1")
	waitClients(t, hub, 1)

	frame := func(company string) []byte {
		b, _ := json.Marshal(map[string]any{
			"type": "mark_read",
			"data": map[string]string{"company_id": company, "chat_id": "5511@s.whatsapp.net"},
		})
		return b
	}
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame("c2")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame("c1")))

	require.Eventually(t, func() bool { return marks.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"c1/5511@s.whatsapp.net"}, marks.marks)
}
