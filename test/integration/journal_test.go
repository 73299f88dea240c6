package integration

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tastevn/checkout-service/internal/checkout/application"
	"github.com/tastevn/checkout-service/internal/checkout/domain"
	checkoutpg "github.com/tastevn/checkout-service/internal/checkout/infrastructure/postgres"
	"github.com/tastevn/checkout-service/pkg/idempotency"
)

func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}
}

func TestJournalRoundTrip(t *testing.T) {
	requireIntegration(t)

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Fatalf("setup containers: %v", err)
	}
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	if err != nil {
		t.Fatalf("pg connect: %v", err)
	}
	defer pool.Close()

	journal := checkoutpg.NewJournal(slog.Default(), pool)
	if err := journal.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	rec := application.OutcomeRecord{
		SessionID:    "sess-1",
		OrderID:      41,
		OrderNumber:  "ORD-41",
		PaymentCode:  "PAY123",
		Method:       domain.MethodBankTransfer,
		State:        domain.StateTimedOut,
		AttemptsUsed: 60,
	}
	if err := journal.RecordOutcome(ctx, rec); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	// A later signal for the same session upserts in place.
	rec.State = domain.StateConfirmed
	rec.AttemptsUsed = 61
	if err := journal.RecordOutcome(ctx, rec); err != nil {
		t.Fatalf("record outcome again: %v", err)
	}

	outcomes, err := journal.OutcomesByOrder(ctx, 41)
	if err != nil {
		t.Fatalf("read outcomes: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected one row, got %d", len(outcomes))
	}
	if outcomes[0].State != string(domain.StateConfirmed) || outcomes[0].AttemptsUsed != 61 {
		t.Fatalf("unexpected outcome: %+v", outcomes[0])
	}
}

func TestIdempotencyStoreSeen(t *testing.T) {
	requireIntegration(t)

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Fatalf("setup containers: %v", err)
	}
	defer env.Teardown(ctx)

	opts, err := redis.ParseURL(env.RedisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	store := idempotency.NewStore(rdb, time.Minute)

	seen, err := store.Seen(ctx, "PAY123")
	if err != nil {
		t.Fatalf("first seen: %v", err)
	}
	if seen {
		t.Fatal("first observation must not be seen")
	}

	seen, err = store.Seen(ctx, "PAY123")
	if err != nil {
		t.Fatalf("second seen: %v", err)
	}
	if !seen {
		t.Fatal("second observation must be seen")
	}
}
