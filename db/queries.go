package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Action is one action-history record.
type Action struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Contents   string    `json:"contents"`
	FromServer bool      `json:"from_server"`
	CreatedAt  time.Time `json:"created_at"`
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs the action-history statements.
type Queries struct {
	db      DBTX
	dialect Dialect
	log     *zap.Logger // statements are logged when non-nil
}

// New returns Queries over db.
func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect, log: q.log}
}

// WithStatementLog returns Queries that log every statement at debug level.
func (q *Queries) WithStatementLog(log *zap.Logger) *Queries {
	return &Queries{db: q.db, dialect: q.dialect, log: log}
}

// Rebind rewrites ? placeholders for the dialect.
func Rebind(d Dialect, query string) string {
	if d != DialectDollar {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (q *Queries) prepare(query string, nargs int) string {
	query = Rebind(q.dialect, query)
	if q.log != nil {
		q.log.Debug("sql", zap.String("query", query), zap.Int("args", nargs))
	}
	return query
}

// InsertActions writes all actions in a single multi-row insert.
func (q *Queries) InsertActions(ctx context.Context, actions []Action) error {
	if len(actions) == 0 {
		return nil
	}
	rows := make([]string, 0, len(actions))
	args := make([]any, 0, len(actions)*5)
	for _, a := range actions {
		rows = append(rows, "(?, ?, ?, ?, ?)")
		args = append(args, a.ID, a.Type, a.Contents, a.FromServer, a.CreatedAt.UTC())
	}
	query := fmt.Sprintf(
		"INSERT INTO action_history (id, type, contents, from_server, created_at) VALUES %s",
		strings.Join(rows, ", "),
	)
	_, err := q.db.ExecContext(ctx, q.prepare(query, len(args)), args...)
	return err
}

const getAction = `SELECT id, type, contents, from_server, created_at FROM action_history WHERE id = ?`

// GetAction returns sql.ErrNoRows when id is unknown.
func (q *Queries) GetAction(ctx context.Context, id string) (Action, error) {
	var a Action
	err := q.db.QueryRowContext(ctx, q.prepare(getAction, 1), id).
		Scan(&a.ID, &a.Type, &a.Contents, &a.FromServer, &a.CreatedAt)
	return a, err
}

// ListActionsParams filters ListActions. An empty Type matches every record.
type ListActionsParams struct {
	Type  string
	Limit int
}

// ListActions returns the newest records first.
func (q *Queries) ListActions(ctx context.Context, p ListActionsParams) ([]Action, error) {
	query := "SELECT id, type, contents, from_server, created_at FROM action_history"
	var args []any
	if p.Type != "" {
		query += " WHERE type = ?"
		args = append(args, p.Type)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, p.Limit)

	rows, err := q.db.QueryContext(ctx, q.prepare(query, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Action{}
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Type, &a.Contents, &a.FromServer, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
