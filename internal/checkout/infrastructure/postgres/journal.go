// Package postgres persists checkout outcomes so support staff can answer
// "what happened to my payment" without backend access.
package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastevn/checkout-service/internal/checkout/application"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_outcomes (
	session_id    TEXT PRIMARY KEY,
	order_id      BIGINT NOT NULL,
	order_number  TEXT NOT NULL,
	payment_code  TEXT NOT NULL DEFAULT '',
	method        TEXT NOT NULL,
	state         TEXT NOT NULL,
	attempts_used INT NOT NULL DEFAULT 0,
	recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Journal struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewJournal(log *slog.Logger, pool *pgxpool.Pool) *Journal {
	return &Journal{log: log, pool: pool}
}

// EnsureSchema creates the outcomes table if it does not exist yet.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	_, err := j.pool.Exec(ctx, schema)
	return err
}

// RecordOutcome upserts the terminal state of one checkout session. A
// session that times out and is later retried writes a fresh row under the
// new session id, so history is preserved per attempt.
func (j *Journal) RecordOutcome(ctx context.Context, rec application.OutcomeRecord) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO checkout_outcomes (session_id, order_id, order_number, payment_code, method, state, attempts_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id)
		DO UPDATE SET state = $6, attempts_used = $7, recorded_at = now()`,
		rec.SessionID, rec.OrderID, rec.OrderNumber, rec.PaymentCode,
		string(rec.Method), string(rec.State), rec.AttemptsUsed)
	return err
}

// Outcome is one journal row read back for support queries.
type Outcome struct {
	SessionID    string
	OrderNumber  string
	PaymentCode  string
	State        string
	AttemptsUsed int
}

// OutcomesByOrder lists the recorded outcomes for an order, newest first.
func (j *Journal) OutcomesByOrder(ctx context.Context, orderID int64) ([]Outcome, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT session_id, order_number, payment_code, state, attempts_used
		FROM checkout_outcomes
		WHERE order_id = $1
		ORDER BY recorded_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.SessionID, &o.OrderNumber, &o.PaymentCode, &o.State, &o.AttemptsUsed); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
