package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/praxis/internal/backend"
	"github.com/MrJamesThe3rd/praxis/internal/config"
	apihttp "github.com/MrJamesThe3rd/praxis/internal/http"
	"github.com/MrJamesThe3rd/praxis/internal/http/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func newRouter(t *testing.T, opts apihttp.Options) http.Handler {
	t.Helper()

	var cfg config.Config
	cfg.App.Store = config.StoreMemory
	cfg.App.Timezone = "Europe/Istanbul"
	cfg.Cache.Size = 8
	cfg.Cache.TTL = time.Minute

	svc, err := backend.New(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	if opts.Health == nil {
		opts.Health = svc.Health
	}

	return apihttp.New(apihttp.NewHandlers(svc, 1<<20), opts)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())

	return v
}

func upload(t *testing.T, h http.Handler, target, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "ekstre.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func TestRouter_Health(t *testing.T) {
	h := newRouter(t, apihttp.Options{})

	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	down := newRouter(t, apihttp.Options{Health: func(context.Context) error { return errors.New("connection refused") }})

	w = do(t, down, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Transactions(t *testing.T) {
	h := newRouter(t, apihttp.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/transactions", map[string]any{
		"date":        "2024-07-01",
		"description": "Temmuz kirası",
		"category":    "Kira",
		"amount":      1250000,
		"direction":   "expense",
		"account":     "bank",
		"status":      "paid",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[map[string]any](t, w)
	assert.Equal(t, "2024-07-01", created["date"])
	id := created["id"].(string)

	w = do(t, h, http.MethodPost, "/api/v1/transactions", map[string]any{
		"date":      "2024-07-03",
		"category":  "Seans",
		"amount":    300000,
		"direction": "income",
		"account":   "cash",
		"status":    "paid",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/transactions?direction=expense", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, h, http.MethodPatch, "/api/v1/transactions/"+id, map[string]any{"amount": 1300000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1300000, decode[map[string]any](t, w)["amount"])

	w = do(t, h, http.MethodGet, "/api/v1/finance/balance?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)

	sheet := decode[map[string]any](t, w)
	assert.EqualValues(t, 300000, sheet["income"])
	assert.EqualValues(t, 1300000, sheet["expense"])
	assert.EqualValues(t, -1000000, sheet["net"])

	w = do(t, h, http.MethodGet, "/api/v1/finance/breakdown?direction=expense", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodDelete, "/api/v1/transactions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/transactions", map[string]any{"date": "01.07.2024", "amount": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ImportSuggestAndReport(t *testing.T) {
	h := newRouter(t, apihttp.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/categories/rules", map[string]string{"pattern": "kira", "category": "Kira"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/categories/rules/suggest?description=K%C4%B0RA%20TEMMUZ", nil)
	require.Equal(t, http.StatusOK, w.Code)
	suggestion := decode[map[string]any](t, w)
	assert.Equal(t, "Kira", suggestion["category"])
	assert.Equal(t, true, suggestion["matched"])

	statement := "Tarih;Açıklama;Tutar\n01.07.2024;KİRA TEMMUZ;-12.500,00\n05.07.2024;EFT AYŞE Y;3.000,00\n"

	w = upload(t, h, "/api/v1/import/preview", statement)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = upload(t, h, "/api/v1/import", statement)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[map[string][]map[string]any](t, w)
	assert.Len(t, res["imported"], 2)
	assert.Empty(t, res["skipped"])

	w = upload(t, h, "/api/v1/import", statement)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[map[string][]map[string]any](t, w)
	assert.Empty(t, res["imported"])
	assert.Len(t, res["skipped"], 2)

	w = upload(t, h, "/api/v1/import", "foo,bar\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/reports/csv?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Row-Count"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "hareketler_20240701_20240731.csv")

	w = do(t, h, http.MethodGet, "/api/v1/reports/csv?account=Bank&direction=EXPENSE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Row-Count"))

	w = do(t, h, http.MethodGet, "/api/v1/reports/csv?account=Cash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Row-Count"))

	w = do(t, h, http.MethodGet, "/api/v1/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kira")
}

func TestRouter_Scheduling(t *testing.T) {
	h := newRouter(t, apihttp.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/clients", map[string]string{"name": "Ayşe Yılmaz", "email": "ayse@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := decode[map[string]any](t, w)["id"].(string)

	w = do(t, h, http.MethodPost, "/api/v1/clients", map[string]string{"name": "Bora", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/psychologists", map[string]string{"name": "Dr. Elif Şahin", "color": "#10B981"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	psyID := decode[map[string]any](t, w)["id"].(string)

	w = do(t, h, http.MethodPost, "/api/v1/appointments", map[string]any{
		"client_id":       clientID,
		"psychologist_id": psyID,
		"date":            "2024-07-15",
		"hour":            10,
		"minute":          30,
		"duration":        50,
		"fee":             150000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	appt := decode[map[string]any](t, w)
	assert.Equal(t, "Ayşe Yılmaz", appt["client_name"])
	assert.Equal(t, "scheduled", appt["status"])
	assert.Equal(t, "2024-07-15T10:30:00+03:00", appt["start"])
	assert.Equal(t, "2024-07-15T11:20:00+03:00", appt["end"])

	w = do(t, h, http.MethodGet, "/api/v1/appointments?q=ay%C5%9Fe&from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, h, http.MethodGet, "/api/v1/appointments?status=cancelled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = do(t, h, http.MethodGet, "/api/v1/calendar/2024/7", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	month := decode[struct {
		Leading int `json:"leading"`
		Days    []struct {
			Date         string           `json:"date"`
			Appointments []map[string]any `json:"appointments"`
		} `json:"days"`
	}](t, w)
	require.Len(t, month.Days, 31)
	assert.Equal(t, "2024-07-15", month.Days[14].Date)
	assert.Len(t, month.Days[14].Appointments, 1)

	w = do(t, h, http.MethodGet, "/api/v1/calendar/2024/13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string]any](t, w)["psychologists"], 1)

	w = do(t, h, http.MethodDelete, "/api/v1/clients/"+clientID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_Auth(t *testing.T) {
	a := auth.New(secret, time.Hour)
	h := newRouter(t, apihttp.Options{Auth: a})

	w := do(t, h, http.MethodGet, "/api/v1/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := a.IssueToken("resepsiyon")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	h := newRouter(t, apihttp.Options{CORSOrigins: []string{"https://panel.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://panel.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}
