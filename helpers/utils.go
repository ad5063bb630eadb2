package helpers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"msgvis/db"
)

// InsertActionsWithRetry writes actions in one transaction. Records without
// an id get a fresh one; on an id collision all generated ids are redrawn and
// the insert is retried.
func InsertActionsWithRetry(ctx context.Context, d *db.DB, q *db.Queries, actions []db.Action, maxRetries int, log *zap.Logger) ([]db.Action, error) {
	generated := make([]bool, len(actions))
	for i := range actions {
		generated[i] = actions[i].ID == ""
		if actions[i].CreatedAt.IsZero() {
			actions[i].CreatedAt = time.Now().UTC()
		}
	}

	operation := func() error {
		for i := range actions {
			if !generated[i] {
				continue
			}
			id, err := NewID()
			if err != nil {
				return retry.Unrecoverable(err)
			}
			actions[i].ID = id
		}

		tx, err := d.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := q.WithTx(tx).InsertActions(ctx, actions); err != nil {
			_ = tx.Rollback()
			if isUniqueConstraint(err) {
				return err
			}
			return retry.Unrecoverable(err)
		}
		return tx.Commit()
	}

	err := retry.Do(
		operation,
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("retrying action insert", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return true
		}
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
