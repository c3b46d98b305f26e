package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/glucose/mixin"
)

func newReportCmd() *cobra.Command {
	var output, decode string

	cmd := &cobra.Command{
		Use:   "report [dir]",
		Short: "Write or read a CBOR installation report",
		Long: `Report installs the manifest and prints one line per installation
record. With -o the report is also written as canonical CBOR; with --decode
a previously written report is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if decode != "" {
				return printSaved(out, decode)
			}

			p, err := loadProgram(args)
			if err != nil {
				return err
			}
			if err := p.Install(); err != nil {
				return err
			}
			rep := p.Registry.Report()
			if output != "" {
				data, err := mixin.MarshalReport(rep)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("cannot write %s: %w", output, err)
				}
			}
			printReport(out, rep)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file")
	cmd.Flags().StringVar(&decode, "decode", "", "Print a saved report")
	cmd.MarkFlagsMutuallyExclusive("output", "decode")
	return cmd
}

func printSaved(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	rep, err := mixin.UnmarshalReport(data)
	if err != nil {
		return err
	}
	printReport(w, rep)
	return nil
}

func printReport(w io.Writer, rep *mixin.Report) {
	for _, ri := range rep.Records {
		fmt.Fprintln(w, formatRecord(ri))
	}
}

func formatRecord(ri mixin.RecordInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", ri.Sequence, ri.Class)
	if ri.Superclass != "" {
		fmt.Fprintf(&sb, " < %s", ri.Superclass)
	}
	if len(ri.Names) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(ri.Names, ", "))
	}
	if len(ri.Bundles) > 0 {
		fmt.Fprintf(&sb, " from %s", strings.Join(ri.Bundles, ", "))
	}
	return sb.String()
}
