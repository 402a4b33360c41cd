// Package cliconfig resolves the CLI's persistent flags (--binary,
// --runtime, --runtime-config) into a concrete process adapter, the one
// step every subcommand needs before it can touch the agreement, the
// dispatcher, or the GPU probe.
package cliconfig

import (
	"github.com/rs/zerolog"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/runtime"
)

// Flags mirrors the three persistent CLI flags, resolved but not yet
// parsed into a runtime.Config.
type Flags struct {
	Binary        string
	RuntimeName   string
	RuntimeConfig string
}

// ResolveAdapter parses RuntimeConfig and builds the runtime.Adapter named
// by RuntimeName. "dummy" (or an empty name) selects the dummy adapter,
// "httpapi" selects the HTTP-API adapter rooted at Binary, and any other
// name fails with BadConfig.
func (f Flags) ResolveAdapter(logger zerolog.Logger) (runtime.Adapter, runtime.Config, error) {
	cfg, err := runtime.ParseConfig(f.RuntimeConfig)
	if err != nil {
		return nil, runtime.Config{}, err
	}

	switch f.RuntimeName {
	case "", "dummy":
		return runtime.NewDummyAdapter(), cfg, nil
	case "httpapi":
		return runtime.NewHTTPAPIAdapter(cfg, f.Binary, logger), cfg, nil
	default:
		return nil, runtime.Config{}, apperr.New(apperr.BadConfig, "unrecognized runtime %q", f.RuntimeName)
	}
}
