// Package runtime implements the child-process runtime adapter: a
// configurable HTTP-API adapter that spawns, gates startup on, and shuts
// down a long-lived model-serving child, plus a dummy adapter used in
// tests, held behind a tri-state process controller.
package runtime

import (
	"encoding/json"
	"os"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// Duration parses and marshals as a Go duration string ("90s", "997ms")
// rather than a number of nanoseconds, so runtime-config JSON stays
// readable by hand.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config is the HTTP-API adapter's configuration. Every field has a
// default matching a known-working model server, so an agreement can omit
// fields it doesn't need to override.
type Config struct {
	StartupScript            string   `json:"startup_script"`
	APIHost                  string   `json:"api_host"`
	APIPort                  int      `json:"api_port"`
	APIShutdownPath          string   `json:"api_shutdown_path"`
	ModelArg                 string   `json:"model_arg"`
	AdditionalArgs           []string `json:"additional_args"`
	StartupTimeout           Duration `json:"startup_timeout"`
	APIPingDelay             Duration `json:"api_ping_delay"`
	MonitoredStartupMsg      string   `json:"monitored_startup_msg"`
	MonitoredModelFailureMsg string   `json:"monitored_model_failure_msg"`
	MonitoredMsgsWTraceLvl   []string `json:"monitored_msgs_w_trace_lvl"`
	GPUUUID                  string   `json:"gpu_uuid,omitempty"`
}

// DefaultConfig returns the adapter's defaults, matching the upstream
// Stable Diffusion WebUI server's expected invocation.
func DefaultConfig() Config {
	return Config{
		StartupScript:   "sd.webui_noxformers/run.bat",
		APIHost:         "localhost",
		APIPort:         7861,
		APIShutdownPath: "sdapi/v1/server-kill",
		ModelArg:        "--ckpt",
		AdditionalArgs: []string{
			"--skip-torch-cuda-test",
			"--skip-python-version-check",
			"--skip-version-check",
		},
		StartupTimeout:           Duration(90 * time.Second),
		APIPingDelay:             Duration(997 * time.Millisecond),
		MonitoredStartupMsg:      "Model loaded in ",
		MonitoredModelFailureMsg: "Stable diffusion model failed to load",
		MonitoredMsgsWTraceLvl: []string{
			// emitted by the pinger's own probe requests; noise, not signal
			"\"GET / HTTP/1.1\" 404 Not Found",
		},
	}
}

// ParseConfig parses raw as either a path to a JSON file or an inline JSON
// document, overlaying it onto DefaultConfig so omitted fields keep their
// default value. An empty raw returns the defaults unchanged.
func ParseConfig(raw string) (Config, error) {
	cfg := DefaultConfig()
	if raw == "" {
		return cfg, nil
	}

	body := []byte(raw)
	if info, err := os.Stat(raw); err == nil && !info.IsDir() {
		b, err := os.ReadFile(raw)
		if err != nil {
			return Config{}, apperr.Wrap(apperr.BadConfig, err, "read runtime config file %q", raw)
		}
		body = b
	}

	if err := json.Unmarshal(body, &cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.BadConfig, err, "parse runtime config")
	}
	return cfg, nil
}
