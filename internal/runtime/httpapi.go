package runtime

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/rs/zerolog"
)

// HTTPAPIAdapter runs a model server that exposes a local HTTP API: it
// gates startup by scanning merged stdout/stderr for a sentinel line,
// pings the API on an interval to force the child's buffered output to
// flush, and shuts down by POSTing to a configured path.
type HTTPAPIAdapter struct {
	cfg       Config
	binaryDir string
	logger    zerolog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

// NewHTTPAPIAdapter builds an adapter that spawns cfg.StartupScript
// resolved relative to binaryDir.
func NewHTTPAPIAdapter(cfg Config, binaryDir string, logger zerolog.Logger) *HTTPAPIAdapter {
	return &HTTPAPIAdapter{
		cfg:       cfg,
		binaryDir: binaryDir,
		logger:    logger.With().Str("adapter", "httpapi").Logger(),
		done:      make(chan struct{}),
	}
}

func (a *HTTPAPIAdapter) Start(ctx context.Context, modelPath string) error {
	exePath := filepath.Join(a.binaryDir, filepath.FromSlash(a.cfg.StartupScript))

	args := append([]string{}, a.cfg.AdditionalArgs...)
	if modelPath != "" {
		args = append(args, a.cfg.ModelArg, formatModelPath(modelPath))
	} else {
		a.logger.Warn().Msg("no model path supplied, starting without model_arg")
	}

	cmd := exec.Command(exePath, args...)
	cmd.Dir = filepath.Dir(exePath)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return apperr.Wrap(apperr.StartupFailure, err, "open runtime stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return apperr.Wrap(apperr.StartupFailure, err, "open runtime stderr")
	}

	if err := cmd.Start(); err != nil {
		return apperr.Wrap(apperr.StartupFailure, err, "spawn runtime %q", exePath)
	}
	a.mu.Lock()
	a.cmd = cmd
	a.mu.Unlock()

	lines := mergeLines(stdout, stderr)

	startupCtx, cancelStartup := context.WithTimeout(ctx, time.Duration(a.cfg.StartupTimeout))
	defer cancelStartup()

	watchCtx, cancelWatch := context.WithCancel(startupCtx)
	defer cancelWatch()

	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error { return a.pingLoop(gctx) })
	g.Go(func() error {
		defer cancelWatch()
		return a.watchStartup(gctx, lines)
	})

	if err := g.Wait(); err != nil {
		a.killChild()
		return err
	}

	go a.awaitExit()
	return nil
}

// watchStartup drains lines, logging each one, until it observes a
// startup or failure sentinel. It hands the remaining lines off to
// drainLines before returning so the child's pipes never back up.
func (a *HTTPAPIAdapter) watchStartup(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return apperr.New(apperr.StartupTimeout, "runtime exited before reporting readiness")
			}
			a.logLine(line)
			switch {
			case strings.HasPrefix(line, a.cfg.MonitoredStartupMsg):
				go a.drainLines(lines)
				return nil
			case a.cfg.MonitoredModelFailureMsg != "" && strings.HasPrefix(line, a.cfg.MonitoredModelFailureMsg):
				go a.drainLines(lines)
				return apperr.New(apperr.StartupFailure, "runtime reported failure: %s", line)
			}
		case <-ctx.Done():
			go a.drainLines(lines)
			return apperr.New(apperr.StartupTimeout, "runtime did not report readiness within %s", time.Duration(a.cfg.StartupTimeout))
		}
	}
}

func (a *HTTPAPIAdapter) drainLines(lines <-chan string) {
	for line := range lines {
		a.logLine(line)
	}
}

func (a *HTTPAPIAdapter) logLine(line string) {
	for _, noisy := range a.cfg.MonitoredMsgsWTraceLvl {
		if strings.Contains(line, noisy) {
			a.logger.Trace().Msg(line)
			return
		}
	}
	a.logger.Debug().Msg(line)
}

// pingLoop issues a GET to the child's API root on an interval. The child
// buffers stdout when not attached to a terminal; this is the only thing
// that reliably forces a flush, which startup detection depends on.
func (a *HTTPAPIAdapter) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(a.cfg.APIPingDelay))
	defer ticker.Stop()

	url := fmt.Sprintf("http://%s:%d/", a.cfg.APIHost, a.cfg.APIPort)
	client := &http.Client{Timeout: time.Duration(a.cfg.APIPingDelay)}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				a.logger.Trace().Err(err).Msg("ping failed")
				continue
			}
			resp.Body.Close()
		}
	}
}

func (a *HTTPAPIAdapter) Stop(ctx context.Context) error {
	url := fmt.Sprintf("http://%s:%d/%s", a.cfg.APIHost, a.cfg.APIPort, a.cfg.APIShutdownPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("build shutdown request")
		return nil
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.logger.Warn().Err(err).Msg("shutdown request failed")
		return nil
	}
	resp.Body.Close()
	return nil
}

func (a *HTTPAPIAdapter) Done() <-chan struct{} {
	return a.done
}

func (a *HTTPAPIAdapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitErr
}

func (a *HTTPAPIAdapter) awaitExit() {
	err := a.cmd.Wait()
	a.mu.Lock()
	a.exitErr = err
	a.mu.Unlock()
	close(a.done)
}

func (a *HTTPAPIAdapter) killChild() {
	a.mu.Lock()
	cmd := a.cmd
	a.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
	go func() {
		_ = cmd.Wait()
		a.mu.Lock()
		select {
		case <-a.done:
		default:
			close(a.done)
		}
		a.mu.Unlock()
	}()
}
