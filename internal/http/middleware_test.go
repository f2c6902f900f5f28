package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzeev8/online-medical-consultation/internal/app"
	"github.com/mzeev8/online-medical-consultation/pkg/auth"
)

func roleProtected(t *testing.T) (http.Handler, *auth.JWT) {
	t.Helper()
	jwt := auth.New("test-secret")
	mw := NewMiddleware(app.Config{CORSAllow: []string{"*"}}, jwt)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mw.Auth(mw.RequireRole("doctor", ok)), jwt
}

func TestRequireRoleAllowsDoctor(t *testing.T) {
	h, jwt := roleProtected(t)
	tok, err := jwt.Sign(auth.Identity{UserID: "u1", Role: "doctor"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/appointments/complete/a1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	h, jwt := roleProtected(t)
	for _, role := range []string{"patient", "guest"} {
		tok, err := jwt.Sign(auth.Identity{UserID: "u1", Role: role}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/appointments/complete/a1", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, "role %q", role)
	}
}

func TestRequireRoleDemandsToken(t *testing.T) {
	h, _ := roleProtected(t)

	req := httptest.NewRequest("POST", "/api/appointments/complete/a1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
