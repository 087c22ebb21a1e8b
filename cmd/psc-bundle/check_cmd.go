package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/jutaro/purescript/internal/bundleconfig"
	"github.com/jutaro/purescript/internal/discover"
	"github.com/jutaro/purescript/internal/exitcode"
	"github.com/jutaro/purescript/internal/jsparse"
	"github.com/jutaro/purescript/internal/module"
)

// checkCmd implements the check mode named in SPEC_FULL §C: unlike
// bundle, it classifies and analyses every module and reports every
// failure instead of aborting at the first one. It never emits a bundle.
func checkCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Classify every module under root and report every error, without bundling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(root)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&root, "root", ".", "directory of generated .js modules to check")
	return cmd
}

func runCheck(root string) error {
	cfg, err := bundleconfig.LoadConfig(root)
	if err != nil {
		return exitcode.Set(err, 2)
	}
	found, err := discover.Discover(discover.Options{Root: root, Include: cfg.Include, Exclude: cfg.Exclude})
	if err != nil {
		return exitcode.Set(err, 2)
	}

	knownModules := make(map[string]bool, len(found))
	for _, m := range found {
		knownModules[m.Name] = true
	}

	pool := jsparse.NewPool()
	defer pool.Close()

	failed := 0
	for _, m := range found {
		id := module.Identifier{Name: m.Name, Kind: module.Regular}
		if err := checkOne(pool, m, id, knownModules, cfg.RequirePathPrefix); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", m.Name, err)
			failed++
		}
	}

	if failed > 0 {
		return exitcode.Set(fmt.Errorf("%d module(s) failed classification", failed), 1)
	}
	fmt.Printf("%d module(s) OK\n", len(found))
	return nil
}

func checkOne(pool *jsparse.Pool, found discover.Found, id module.Identifier, knownModules map[string]bool, requirePathPrefix string) error {
	tree, err := pool.Parse(found.Source)
	if err != nil {
		return err
	}
	defer tree.Close()

	src := []byte(found.Source)
	mod, pending, err := module.Classify(tree, src, id, knownModules, requirePathPrefix)
	if err != nil {
		return err
	}
	module.AnalyzeDeps(mod, pending, src)

	if found.HasForeign {
		if err := checkForeignReferences(pool, tree, src, found); err != nil {
			return err
		}
	}
	return nil
}

// checkForeignReferences cross-validates every `$foreign.x` access this
// module's source makes against the set of names its foreign twin
// actually declares, reporting the first name that has no matching
// declaration.
func checkForeignReferences(pool *jsparse.Pool, tree *ts.Tree, src []byte, found discover.Found) error {
	foreignTree, err := pool.Parse(found.ForeignSource)
	if err != nil {
		return err
	}
	defer foreignTree.Close()

	declared, err := module.ExtractForeignExports(foreignTree, []byte(found.ForeignSource))
	if err != nil {
		return err
	}

	referenced := module.CollectForeignReferences(tree, src)
	var missing []string
	for name := range referenced {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("references $foreign.%s, which its foreign module does not export", missing[0])
	}
	return nil
}
