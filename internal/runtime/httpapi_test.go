package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/rs/zerolog"
)

func newTestAdapter() *HTTPAPIAdapter {
	cfg := DefaultConfig()
	return NewHTTPAPIAdapter(cfg, ".", zerolog.Nop())
}

func TestWatchStartupResolvesOnStartupSentinel(t *testing.T) {
	a := newTestAdapter()
	lines := make(chan string, 4)
	lines <- "loading weights..."
	lines <- "Model loaded in 3.2s"

	err := a.watchStartup(context.Background(), lines)
	if err != nil {
		t.Fatalf("watchStartup() = %v, want nil", err)
	}
}

func TestWatchStartupResolvesOnFailureSentinel(t *testing.T) {
	a := newTestAdapter()
	lines := make(chan string, 4)
	lines <- "Stable diffusion model failed to load: out of memory"

	err := a.watchStartup(context.Background(), lines)
	if !apperr.Is(err, apperr.StartupFailure) {
		t.Fatalf("watchStartup() kind = %v, want StartupFailure", apperr.KindOf(err))
	}
}

func TestWatchStartupTimesOutWhenNeitherSentinelSeen(t *testing.T) {
	a := newTestAdapter()
	lines := make(chan string)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := a.watchStartup(ctx, lines)
	if !apperr.Is(err, apperr.StartupTimeout) {
		t.Fatalf("watchStartup() kind = %v, want StartupTimeout", apperr.KindOf(err))
	}
}

func TestWatchStartupTimesOutOnChannelClose(t *testing.T) {
	a := newTestAdapter()
	lines := make(chan string)
	close(lines)

	err := a.watchStartup(context.Background(), lines)
	if !apperr.Is(err, apperr.StartupTimeout) {
		t.Fatalf("watchStartup() kind = %v, want StartupTimeout", apperr.KindOf(err))
	}
}
