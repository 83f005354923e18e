package deposit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fkhayef/library/pkg/middleware"
)

func serve(h http.Handler, method, target, body string, accountID int64, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithAccount(req.Context(), accountID, role))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_DepositAndRefund(t *testing.T) {
	l := newLedger()
	l.addCard(cardID, "0")
	router := NewHandler(newTestService(l), zerolog.Nop()).Routes()

	rec := serve(router, http.MethodPost, "/", `{"library_card_id": 7, "amount": "100000"}`, librarianAccount, middleware.RoleLibrarian)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"deposit"`)

	l.active[cardID] = 1
	rec = serve(router, http.MethodPost, "/refund", `{"library_card_id": 7, "amount": 50000}`, librarianAccount, middleware.RoleLibrarian)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot refund while books are borrowed")

	l.active[cardID] = 0
	rec = serve(router, http.MethodPost, "/refund", `{"library_card_id": 7, "amount": 50000}`, librarianAccount, middleware.RoleLibrarian)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultRefundNote)
}

func TestHandler_Errors(t *testing.T) {
	l := newLedger()
	l.addCard(cardID, "0")
	router := NewHandler(newTestService(l), zerolog.Nop()).Routes()

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		account int64
		role    string
		want    int
	}{
		{"reader_cannot_deposit", http.MethodPost, "/", `{"library_card_id": 7, "amount": 1}`, readerAccount, middleware.RoleReader, http.StatusForbidden},
		{"bad_json", http.MethodPost, "/", `{`, librarianAccount, middleware.RoleLibrarian, http.StatusBadRequest},
		{"missing_card", http.MethodPost, "/", `{"amount": 1}`, librarianAccount, middleware.RoleLibrarian, http.StatusBadRequest},
		{"zero_amount", http.MethodPost, "/", `{"library_card_id": 7, "amount": 0}`, librarianAccount, middleware.RoleLibrarian, http.StatusBadRequest},
		{"unknown_card", http.MethodPost, "/", `{"library_card_id": 99, "amount": 1}`, librarianAccount, middleware.RoleLibrarian, http.StatusNotFound},
		{"unknown_staff", http.MethodPost, "/", `{"library_card_id": 7, "amount": 1}`, 12345, middleware.RoleLibrarian, http.StatusNotFound},
		{"bad_type_filter", http.MethodGet, "/?type=other", "", librarianAccount, middleware.RoleLibrarian, http.StatusBadRequest},
		{"bad_card_filter", http.MethodGet, "/?library_card_id=x", "", librarianAccount, middleware.RoleLibrarian, http.StatusBadRequest},
		{"librarian_cannot_reconcile", http.MethodGet, "/reconciliation", "", librarianAccount, middleware.RoleLibrarian, http.StatusForbidden},
		{"admin_reconciles", http.MethodGet, "/reconciliation", "", librarianAccount, middleware.RoleAdmin, http.StatusOK},
		{"reader_ledger", http.MethodGet, "/my", "", readerAccount, middleware.RoleReader, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.method, tt.target, tt.body, tt.account, tt.role)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
