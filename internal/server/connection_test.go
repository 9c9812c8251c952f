package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "203.0.113.7:52611"
	assert.Equal(t, "203.0.113.7", clientIP(r))

	// X-Real-IP 优先于 RemoteAddr
	r.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", clientIP(r))

	// X-Forwarded-For 优先级最高，取第一跳
	r.Header.Set("X-Forwarded-For", "192.0.2.1, 198.51.100.2")
	assert.Equal(t, "192.0.2.1", clientIP(r))
}

func TestClientIP_NoPort(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
