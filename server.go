package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"msgvis/cache"
	"msgvis/config"
	"msgvis/db"
	"msgvis/handlers/history"
	"msgvis/handlers/site"
	"msgvis/helpers"
	"msgvis/metrics"
	"msgvis/workers"
)

type Server struct {
	E        *echo.Echo
	DB       *db.DB
	Q        *db.Queries
	Log      *zap.Logger
	Settings *config.Store
	Worker   *workers.HistoryWorker
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	limiter *helpers.RateLimiter
}

func NewServer(s *Server) *Server {
	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())

	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = echo.ExtractIPDirect()
	e.HTTPErrorHandler = s.httpErrorHandler

	s.E = e
	s.limiter = helpers.NewRateLimiter(60, time.Minute)
	s.routes()
	return s
}

// httpErrorHandler writes {"error": ...} bodies. Internal error text is only
// exposed while DEBUG is on in the current settings.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil && s.Settings.Current().Debug {
			msg = he.Internal.Error()
		}
	} else if s.Settings.Current().Debug {
		msg = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = helpers.JSONError(c, code, msg)
	}
	if err != nil {
		s.Log.Error("write error response", zap.Error(err))
	}
}

func (s *Server) routes() {
	s.E.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	s.E.GET("/readyz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			return helpers.JSONError(c, http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "ok")
	})
	s.E.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))

	app := s.E.Group("", helpers.AllowedHosts(s.Settings.Current))

	st := site.New(s.Settings.Current)
	app.GET("/api/config", st.Config)
	app.GET("/debug/settings", st.DebugSettings, helpers.InternalOnly(s.Settings.Current))

	hist := history.New(s.DB, s.Q, s.Log, s.Worker, s.Cache, s.Metrics)
	app.POST("/api/history", hist.Create, s.limiter.Middleware)
	app.GET("/api/history", hist.List)
	app.GET("/api/history/:id", hist.Get)

	if root, ok := s.Settings.Current().StaticRoot.Get(); ok {
		app.Static("/static", root)
	}
}

func (s *Server) Start(addr string) error {
	s.Log.Info("server starting", zap.String("addr", addr))
	return s.E.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.E.Shutdown(ctx)
}
