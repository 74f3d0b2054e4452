package vision

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	t.Parallel()
	cases := []struct {
		reply string
		want  int
	}{
		{"7", 7},
		{" 12 \n", 12},
		{"I can see 3 banknotes.", 3},
		{"none", 0},
		{"", 0},
		{"zero (0) notes", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseCount(tc.reply), "reply %q", tc.reply)
	}
}

func TestCountBanknotesWithoutKey(t *testing.T) {
	t.Parallel()
	p := NewOpenAIProvider("", "gpt-4o-mini")
	_, err := p.CountBanknotes(context.Background(), []byte("img"))
	require.ErrorIs(t, err, ErrNoAPIKey)
}

// Simultaneous first submissions must not mutate provider state; the
// client is built once at construction and only read afterwards.
func TestCountBanknotesConcurrentFirstCalls(t *testing.T) {
	t.Parallel()
	p := NewOpenAIProvider("  ", "gpt-4o-mini")

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.CountBanknotes(context.Background(), []byte("img"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.ErrorIs(t, err, ErrNoAPIKey)
	}
}
