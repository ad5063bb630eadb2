package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"msgvis/db"
	h "msgvis/helpers"
)

// record stores a server-side action for the request. It never fails the
// request: the worker takes it when it can, otherwise it is written directly.
func (hi *History) record(c echo.Context, typ string, contents any) {
	b, err := json.Marshal(contents)
	if err != nil {
		hi.Log.Debug("unencodable action contents", zap.String("type", typ), zap.Error(err))
		return
	}
	id, err := h.NewID()
	if err != nil {
		hi.Log.Debug("action id generation failed", zap.Error(err))
		return
	}
	a := db.Action{
		ID:         id,
		Type:       typ,
		Contents:   string(b),
		FromServer: true,
		CreatedAt:  time.Now().UTC(),
	}

	if hi.Worker != nil {
		if hi.Worker.Enqueue(a) {
			return
		}
		hi.writeFallback(c.Request().Context(), a, "worker full")
		return
	}
	hi.writeFallback(c.Request().Context(), a, "no worker configured")
}

func (hi *History) writeFallback(ctx context.Context, a db.Action, reason string) {
	if err := hi.Q.InsertActions(ctx, []db.Action{a}); err != nil {
		hi.Log.Debug("fallback action insert failed", zap.String("type", a.Type), zap.Error(err))
		return
	}
	if hi.Metrics != nil {
		hi.Metrics.ActionsFallbackTotal.Inc()
		hi.Metrics.ActionsWrittenTotal.WithLabelValues("server").Inc()
	}
	hi.Log.Debug("action worker fallback sync insert", zap.String("type", a.Type), zap.String("reason", reason))
}
