package main

import (
	"github.com/spf13/cobra"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliconfig"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliout"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/gpu"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/runtime"
)

func newTestCmd(flags *cliconfig.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the adapter's self-test (GPU probe)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runtime.ParseConfig(flags.RuntimeConfig)
			if err != nil {
				return err
			}

			detector := &gpu.NvidiaSMIDetector{}
			info, err := detector.Detect(cfg.GPUUUID)
			if err != nil {
				return err
			}

			cliout.RenderGPUDetection(cmd.OutOrStdout(), info)
			return nil
		},
	}
}
