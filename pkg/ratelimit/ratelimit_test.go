package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func doReq(h http.Handler, addr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	h := New(2, time.Minute).Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doReq(h, "10.0.0.1:1234"))
}

func TestLimiterIsPerIP(t *testing.T) {
	h := New(1, time.Minute).Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doReq(h, "10.0.0.1:5678"))
	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.2:1234"))
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	h := New(1, 10*time.Millisecond).Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doReq(h, "10.0.0.1:1234"))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doReq(h, "10.0.0.1:1234"))
}
