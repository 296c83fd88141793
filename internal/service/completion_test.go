package service

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

// TestIsTransientTransport covers the narrow set of retryable failures.
func TestIsTransientTransport(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "connection aborted", err: syscall.ECONNABORTED, want: true},
		{
			name: "wrapped reset",
			err:  fmt.Errorf("post failed: %w", &net.OpError{Op: "read", Err: syscall.ECONNRESET}),
			want: true,
		},
		{name: "net timeout", err: timeoutNetErr{}, want: true},
		{name: "plain error", err: errors.New("invalid api key"), want: false},
		{name: "refused connection", err: syscall.ECONNREFUSED, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTransientTransport(tc.err); got != tc.want {
				t.Errorf("isTransientTransport(%v): got %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

// TestCompletionTimingConstants pins the retry policy parameters the rest
// of the pipeline is designed around.
func TestCompletionTimingConstants(t *testing.T) {
	if transportTimeout != 120*time.Second {
		t.Errorf("transportTimeout: got %v", transportTimeout)
	}
	if completionDeadline != 90*time.Second {
		t.Errorf("completionDeadline: got %v", completionDeadline)
	}
	if maxRetries != 5 {
		t.Errorf("maxRetries: got %d", maxRetries)
	}
	if retryBackoff != 3*time.Second {
		t.Errorf("retryBackoff: got %v", retryBackoff)
	}
}

// TestCompletionOptionsDefaults verifies zero options fall back to the
// configured model.
func TestCompletionOptionsDefaults(t *testing.T) {
	svc := NewCompletionService(&CompletionConfig{
		Model:       "default-model",
		APIKey:      "test",
		MaxTokens:   1024,
		Temperature: 0.5,
	})
	if svc.Model() != "default-model" {
		t.Errorf("Model(): got %q", svc.Model())
	}
}

// Compile-time check that CompletionService satisfies the pipeline contract.
var _ Completer = (*CompletionService)(nil)

// Guard against accidental interface drift on the fakes as well.
var (
	_ Completer     = (*fakeCompleter)(nil)
	_ CatalogReader = (*fakeCatalog)(nil)
	_ MenuStore     = (*fakeMenuStore)(nil)
)
