package history

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"msgvis/cache"
	"msgvis/db"
	h "msgvis/helpers"
	"msgvis/metrics"
	"msgvis/workers"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// History handler contains dependencies for action-history endpoints.
type History struct {
	DB      *db.DB
	Q       *db.Queries
	Log     *zap.Logger
	Worker  *workers.HistoryWorker
	Cache   cache.Cache
	Metrics *metrics.Metrics
}

func New(d *db.DB, q *db.Queries, log *zap.Logger, w *workers.HistoryWorker, c cache.Cache, m *metrics.Metrics) *History {
	return &History{
		DB:      d,
		Q:       q,
		Log:     log,
		Worker:  w,
		Cache:   c,
		Metrics: m,
	}
}

type recordRequest struct {
	Type      string     `json:"type" validate:"required,max=128"`
	Contents  string     `json:"contents"`
	CreatedAt *time.Time `json:"created_at"`
}

type createRequest struct {
	Records []recordRequest `json:"records" validate:"required,min=1,max=1000,dive"`
}

// POST /api/history
func (hi *History) Create(c echo.Context) error {
	var req createRequest
	if err := h.BindAndValidate(c, &req); err != nil {
		return nil
	}

	actions := make([]db.Action, 0, len(req.Records))
	for _, r := range req.Records {
		a := db.Action{Type: r.Type, Contents: r.Contents}
		if r.CreatedAt != nil {
			a.CreatedAt = r.CreatedAt.UTC()
		}
		actions = append(actions, a)
	}

	ctx := c.Request().Context()
	created, err := h.InsertActionsWithRetry(ctx, hi.DB, hi.Q, actions, 5, hi.Log)
	if err != nil {
		hi.Log.Error("failed to store action history", zap.Int("records", len(actions)), zap.Error(err))
		return h.JSONError(c, http.StatusInternalServerError, "couldn't store action history")
	}
	if hi.Metrics != nil {
		hi.Metrics.ActionsWrittenTotal.WithLabelValues("client").Add(float64(len(created)))
	}

	return h.JSONSuccess(c, http.StatusOK, map[string]any{"records": created}, "")
}

// GET /api/history?type=&limit=
func (hi *History) List(c echo.Context) error {
	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return h.JSONError(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxListLimit)
	}
	typ := c.QueryParam("type")

	hi.record(c, "history:get-list", map[string]any{"type": typ, "limit": limit})

	ctx := c.Request().Context()
	actions, err := hi.Q.ListActions(ctx, db.ListActionsParams{Type: typ, Limit: limit})
	if err != nil {
		hi.Log.Error("failed to list action history", zap.Error(err))
		return h.JSONError(c, http.StatusInternalServerError, "db error")
	}
	return h.JSONSuccess(c, http.StatusOK, map[string]any{"records": actions}, "")
}

// GET /api/history/:id
func (hi *History) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return h.JSONError(c, http.StatusBadRequest, "missing id")
	}

	hi.record(c, "history:get-single", map[string]any{"id": id})

	ctx := c.Request().Context()
	action, _, err := hi.resolveAction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return h.JSONError(c, http.StatusNotFound, "not found")
	}
	if err != nil {
		hi.Log.Error("db lookup failed", zap.String("id", id), zap.Error(err))
		return h.JSONError(c, http.StatusInternalServerError, "db error")
	}
	return h.JSONSuccess(c, http.StatusOK, action, "")
}
