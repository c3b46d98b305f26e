package main

import "github.com/spf13/cobra"

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [dir]",
		Short: "Install the manifest's mixins and print its expressions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args)
			if err != nil {
				return err
			}
			return p.Run(cmd.OutOrStdout())
		},
	}
}
