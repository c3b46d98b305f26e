package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/glucose/mixin"
)

func newChainCmd() *cobra.Command {
	var class, member string

	cmd := &cobra.Command{
		Use:   "chain [dir]",
		Short: "Show the implementations a super chain visits",
		Long: `Chain lists, most-derived first, the classes along a class's ancestry
that implement a member. Members supplied by a mixin are suffixed with the
bundle name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args)
			if err != nil {
				return err
			}
			links, err := p.Chain(class, member)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mixin.FormatChain(links))
			return nil
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "Class to start from")
	cmd.Flags().StringVar(&member, "member", "", "Member name")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}
