package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"msgvis/config"
)

func TestHostAllowed(t *testing.T) {
	patterns := []string{"example.com", ".msgvis.org"}

	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"EXAMPLE.com", true},
		{"example.com.", true},
		{"www.example.com", false},
		{"msgvis.org", true},
		{"api.msgvis.org", true},
		{"evilmsgvis.org", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, HostAllowed(tt.host, patterns))
		})
	}

	assert.True(t, HostAllowed("anything", []string{"*"}))
	assert.False(t, HostAllowed("localhost", nil))
}

func serve(settings *config.Settings, mw echo.MiddlewareFunc, host, remote string, headers ...string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, mw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	if remote != "" {
		req.RemoteAddr = remote
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAllowedHosts(t *testing.T) {
	strict := &config.Settings{AllowedHosts: []string{"example.com"}}
	mw := AllowedHosts(func() *config.Settings { return strict })

	assert.Equal(t, http.StatusOK, serve(strict, mw, "example.com:8000", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(strict, mw, "other.com", "").Code)
}

func TestAllowedHosts_EmptyList(t *testing.T) {
	prod := &config.Settings{AllowedHosts: []string{}}
	debug := &config.Settings{AllowedHosts: []string{}, Debug: true}

	assert.Equal(t, http.StatusBadRequest,
		serve(prod, AllowedHosts(func() *config.Settings { return prod }), "localhost", "").Code)
	assert.Equal(t, http.StatusOK,
		serve(debug, AllowedHosts(func() *config.Settings { return debug }), "localhost:8000", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(debug, AllowedHosts(func() *config.Settings { return debug }), "example.com", "").Code)
}

func TestInternalOnly(t *testing.T) {
	s := &config.Settings{Debug: true, InternalIPs: []string{"10.0.0.5"}}
	mw := InternalOnly(func() *config.Settings { return s })

	assert.Equal(t, http.StatusOK, serve(s, mw, "x", "10.0.0.5:4321").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, mw, "x", "10.0.0.6:4321").Code)

	off := &config.Settings{InternalIPs: []string{"10.0.0.5"}}
	assert.Equal(t, http.StatusNotFound,
		serve(off, InternalOnly(func() *config.Settings { return off }), "x", "10.0.0.5:4321").Code)
}

func TestInternalOnly_IgnoresForwardingHeaders(t *testing.T) {
	s := &config.Settings{Debug: true, InternalIPs: []string{"10.0.0.5"}}
	mw := InternalOnly(func() *config.Settings { return s })

	assert.Equal(t, http.StatusNotFound,
		serve(s, mw, "x", "203.0.113.9:5555", echo.HeaderXForwardedFor, "10.0.0.5").Code)
	assert.Equal(t, http.StatusNotFound,
		serve(s, mw, "x", "203.0.113.9:5555", echo.HeaderXRealIP, "10.0.0.5").Code)
}
