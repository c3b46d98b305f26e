// Command glucose runs glucose.toml programs: it builds the declared class
// hierarchy, installs the declared mixins and prints the results of the
// manifest's expressions.
//
// Usage:
//
//	glucose run [dir]
//	glucose chain [dir] --class D --member baz
//	glucose report [dir] -o report.cbor
//	glucose report --decode report.cbor
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
