// Command psc-bundle is the CLI entry point (SPEC_FULL §A): it discovers
// a directory of generated `.js` modules, loads optional project config,
// and runs the bundler core (pkg/bundle).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jutaro/purescript/internal/exitcode"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:     "psc-bundle",
		Short:   "psc-bundle bundles restricted-CommonJS generated modules into one file",
		Version: version,
	}

	root.AddCommand(bundleCmd())
	root.AddCommand(checkCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitcode.Exit(err)
	}
}
