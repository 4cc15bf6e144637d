package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestAuthenticator_Middleware(t *testing.T) {
	issuedAt := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)

	a := New(secret, time.Hour)
	a.now = func() time.Time { return issuedAt }

	valid, err := a.IssueToken("resepsiyon")
	require.NoError(t, err)

	foreign, err := New("ffffffffffffffffffffffffffffffff", time.Hour).IssueToken("resepsiyon")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		now        time.Time
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, now: issuedAt.Add(time.Minute), wantStatus: http.StatusOK},
		{name: "missing header", now: issuedAt, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, now: issuedAt, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + valid, now: issuedAt.Add(2 * time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "other secret", header: "Bearer " + foreign, now: time.Now(), wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.token", now: issuedAt, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.now = func() time.Time { return tt.now }

			var subject string

			h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = Subject(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "resepsiyon", subject)
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}
