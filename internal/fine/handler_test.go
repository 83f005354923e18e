package fine

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/pkg/middleware"
)

func serve(h http.Handler, method, target string, accountID int64, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(middleware.WithAccount(req.Context(), accountID, role))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_PayFine(t *testing.T) {
	f := newFixture(5)
	f.store.add(Fine{BorrowRequestID: 1, LibraryCardID: readerCardID, Amount: decimal.NewFromInt(10)})
	router := NewHandler(f.svc, zerolog.Nop()).Routes()

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPut, "/1/pay", readerAccount, middleware.RoleReader).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPut, "/abc/pay", librarianAccount, middleware.RoleLibrarian).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPut, "/999/pay", librarianAccount, middleware.RoleLibrarian).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPut, "/1/pay", 12345, middleware.RoleLibrarian).Code)

	rec := serve(router, http.MethodPut, "/1/pay", librarianAccount, middleware.RoleLibrarian)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"paid"`)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPut, "/1/pay", librarianAccount, middleware.RoleLibrarian).Code)
}

func TestHandler_ListFines(t *testing.T) {
	f := newFixture(5)
	f.store.add(Fine{BorrowRequestID: 1, LibraryCardID: 1, Amount: decimal.NewFromInt(10)})
	router := NewHandler(f.svc, zerolog.Nop()).Routes()

	rec := serve(router, http.MethodGet, "/?status=pending", librarianAccount, middleware.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/?status=bogus", librarianAccount, middleware.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/", readerAccount, middleware.RoleReader).Code)
}

func TestHandler_ListMyFines(t *testing.T) {
	f := newFixture(5)
	f.store.add(Fine{BorrowRequestID: 1, LibraryCardID: readerCardID, Amount: decimal.NewFromInt(10)})
	router := NewHandler(f.svc, zerolog.Nop()).Routes()

	rec := serve(router, http.MethodGet, "/my", readerAccount, middleware.RoleReader)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":"10"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), `"total_amount":"10"`)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/my", librarianAccount, middleware.RoleLibrarian).Code)
}

func TestHandler_DeleteFine(t *testing.T) {
	f := newFixture(5)
	f.store.add(Fine{BorrowRequestID: 1, LibraryCardID: 1, Amount: decimal.NewFromInt(10)})
	f.store.add(Fine{BorrowRequestID: 2, LibraryCardID: 1, Amount: decimal.NewFromInt(10), Status: StatusPaid})
	router := NewHandler(f.svc, zerolog.Nop()).Routes()

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodDelete, "/1", librarianAccount, middleware.RoleLibrarian).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodDelete, "/2", librarianAccount, middleware.RoleAdmin).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/1", librarianAccount, middleware.RoleAdmin).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/1", librarianAccount, middleware.RoleAdmin).Code)
}

func TestHandler_InternalErrorLogsWithRequestLogger(t *testing.T) {
	f := newFixture(5)
	f.borrows.err = errors.New("connection reset")
	router := NewHandler(f.svc, zerolog.Nop()).Routes()

	buf := &bytes.Buffer{}
	req := httptest.NewRequest(http.MethodPost, "/materialize", nil)
	ctx := middleware.WithAccount(req.Context(), librarianAccount, middleware.RoleLibrarian)
	ctx = logger.WithContext(ctx, logger.NewWithWriter(buf).With().Str("request_id", "req-7").Logger())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, buf.String(), "Failed to materialize fines")
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), "connection reset")
}
