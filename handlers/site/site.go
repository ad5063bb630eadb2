package site

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"msgvis/config"
	h "msgvis/helpers"
)

// Site serves settings-derived endpoints. Settings are read per request so a
// reload is visible immediately.
type Site struct {
	Settings h.SettingsFunc
}

func New(settings h.SettingsFunc) *Site {
	return &Site{Settings: settings}
}

type publicConfig struct {
	Debug             bool                    `json:"debug"`
	DebugJS           bool                    `json:"debug_js"`
	GoogleAnalyticsID config.Optional[string] `json:"google_analytics_id"`
}

// GET /api/config
func (s *Site) Config(c echo.Context) error {
	cur := s.Settings()
	return h.JSONSuccess(c, http.StatusOK, publicConfig{
		Debug:             cur.Debug,
		DebugJS:           cur.DebugJS,
		GoogleAnalyticsID: cur.AnalyticsID,
	}, "")
}

// GET /debug/settings, behind helpers.InternalOnly.
func (s *Site) DebugSettings(c echo.Context) error {
	return h.JSONSuccess(c, http.StatusOK, s.Settings().Redact(), "")
}
