package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliconfig"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/gpu"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/offertemplate"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/runtime"
)

func newOfferTemplateCmd(flags *cliconfig.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "offer-template",
		Short: "Print the offer JSON, merging GPU info when detectable",
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

			out, err := offertemplate.Render(flags.RuntimeName, info)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
