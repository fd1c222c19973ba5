package key

import (
	"MenuHub/entity"
	"MenuHub/internal/lib/api/cont"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCore struct {
	username  string
	companyID string
	called    bool
}

func (f *fakeCore) GenerateApiKey(username, companyID string) (string, error) {
	f.called = true
	f.username, f.companyID = username, companyID
	return "key-" + username, nil
}

func TestGenerate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	operator := &entity.UserAuth{Username: "admin"}
	scoped := &entity.UserAuth{Username: "joao", CompanyID: "c-1"}

	tests := []struct {
		name    string
		user    *entity.UserAuth
		body    string
		status  int
		company string
		called  bool
	}{
		{"operator key", operator, `{"username":"maria"}`, http.StatusOK, "", true},
		{"operator issues company key", operator, `{"username":"maria","company_id":"c-2"}`, http.StatusOK, "c-2", true},
		{"company key inherits scope", scoped, `{"username":"maria"}`, http.StatusOK, "c-1", true},
		{"company key for own company", scoped, `{"username":"maria","company_id":"c-1"}`, http.StatusOK, "c-1", true},
		{"company key for other company", scoped, `{"username":"maria","company_id":"c-2"}`, http.StatusForbidden, "", false},
		{"missing username", operator, `{}`, http.StatusBadRequest, "", false},
		{"no user", nil, `{"username":"maria"}`, http.StatusUnauthorized, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := &fakeCore{}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/key/new", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.user != nil {
				req = req.WithContext(cont.PutUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			Generate(log, core).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.called, core.called)
			assert.Equal(t, tt.company, core.companyID)
			if tt.called {
				assert.Contains(t, rec.Body.String(), `"token":"key-maria"`)
			}
		})
	}
}
