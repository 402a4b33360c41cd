package main

import (
	"github.com/spf13/cobra"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliconfig"
)

func newRootCmd() *cobra.Command {
	flags := &cliconfig.Flags{}

	root := &cobra.Command{
		Use:   "exeunit",
		Short: "Per-activity execution-unit supervisor for an AI runtime",
	}

	root.PersistentFlags().StringVar(&flags.Binary, "binary", "", "override the child runtime executable's directory")
	root.PersistentFlags().StringVar(&flags.RuntimeName, "runtime", "dummy", "runtime adapter: dummy or httpapi")
	root.PersistentFlags().StringVar(&flags.RuntimeConfig, "runtime-config", "", "inline JSON or path to a JSON file")

	root.AddCommand(newServiceBusCmd(flags))
	root.AddCommand(newOfferTemplateCmd(flags))
	root.AddCommand(newTestCmd(flags))

	return root
}
