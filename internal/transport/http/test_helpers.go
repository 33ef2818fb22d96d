package http

import (
	"context"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/chat"
	"github.com/chatapp/chatapp-server/internal/config"
	"github.com/chatapp/chatapp-server/internal/metrics"
	"github.com/chatapp/chatapp-server/internal/store"
	"github.com/chatapp/chatapp-server/internal/store/sqlstore"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlstore.NewWithSetup(sqlstore.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return st
}

// createTestServer wires a full server over the given store.
func createTestServer(t *testing.T, st store.Store) stdhttp.Handler {
	t.Helper()

	disabledLogger := zerolog.Nop()
	m := metrics.New()
	svc := chat.NewService(st, m, &disabledLogger)

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		CORSOrigins:       []string{"*"},
	}

	return NewServer(svc, st, m, &cfg, &disabledLogger).Handler
}
