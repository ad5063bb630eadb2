package helpers

import (
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"msgvis/config"
)

// SettingsFunc returns the settings in effect for the current request.
type SettingsFunc func() *config.Settings

// Hosts allowed when ALLOWED_HOSTS is empty and DEBUG is on.
var debugHosts = []string{"localhost", "127.0.0.1", "::1"}

// AllowedHosts rejects requests whose Host header is not in ALLOWED_HOSTS.
// An entry ".example.com" matches example.com and every subdomain, "*"
// matches anything. An empty list allows only localhost in debug mode and
// nothing otherwise.
func AllowedHosts(settings SettingsFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := settings()
			allowed := s.AllowedHosts
			if len(allowed) == 0 && s.Debug {
				allowed = debugHosts
			}
			host := requestHost(c.Request().Host)
			if !HostAllowed(host, allowed) {
				return JSONError(c, http.StatusBadRequest, "invalid host header")
			}
			return next(c)
		}
	}
}

// HostAllowed reports whether host matches one of the patterns.
func HostAllowed(host string, patterns []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(p)
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if host == p[1:] || strings.HasSuffix(host, p) {
				return true
			}
		case host == p:
			return true
		}
	}
	return false
}

func requestHost(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.Trim(hostport, "[]")
}

// InternalOnly serves the route only when DEBUG is on and the client IP is
// listed in INTERNAL_IPS; everyone else gets a 404.
func InternalOnly(settings SettingsFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := settings()
			if !s.Debug || !slices.Contains(s.InternalIPs, ClientIP(c)) {
				return JSONError(c, http.StatusNotFound, "not found")
			}
			return next(c)
		}
	}
}

// ClientIP returns the address of the peer that opened the connection.
// Forwarding headers are client controlled and never consulted.
func ClientIP(c echo.Context) string {
	return echo.ExtractIPDirect()(c.Request())
}
