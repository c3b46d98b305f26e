package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/glucose/manifest"
	"github.com/chazu/glucose/program"

	_ "github.com/tliron/commonlog/simple"
)

func newRootCmd() *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:           "glucose",
		Short:         "Glucose installs capability mixins onto a class hierarchy",
		Long:          `Glucose loads a glucose.toml manifest, defines its classes, installs the mixins declared against them and evaluates its expressions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Verbose logging (repeat for more)")

	root.AddCommand(newRunCmd(), newChainCmd(), newReportCmd())
	return root
}

// loadProgram finds the manifest at or above dir and builds it.
func loadProgram(args []string) (*program.Program, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found in %s or its parents", manifest.FileName, dir)
	}
	return program.Build(m)
}
