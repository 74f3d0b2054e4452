package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/lovebank/internal/bank"
	"github.com/jask/lovebank/internal/telegram"
)

// Cancelling the context while the poll loop is backing off after an
// API error must stop Run promptly, not after the full backoff.
func TestRunStopsPromptlyOnCancelDuringBackoff(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"boom"}`))
	}))
	t.Cleanup(srv.Close)

	client := telegram.NewClient("TEST_TOKEN")
	client.BaseURL = srv.URL
	b := New(client, nil, &bank.Aggregator{}, &bank.Redeemer{}, bank.DefaultCatalog(),
		100, 0, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// Let the loop hit the error and enter its backoff, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
