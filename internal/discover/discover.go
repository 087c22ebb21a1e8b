// Package discover maps a directory of generated `.js` files onto the
// bundler's module inputs - the "file reader"/"module root" collaborator
// spec.md §1 treats as out of scope for the core pipeline. It walks the
// filesystem the way ludo-technologies-jscan's app.FileHelper and
// gnana997-uispec's pkg/scanner do: a gitignore-aware directory walk with
// doublestar include/exclude globs.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jutaro/purescript/internal/helpers"
	"github.com/jutaro/purescript/pkg/bundle"
)

// ForeignSuffix is the filename convention for a module's hand-written JS
// twin, per spec.md's GLOSSARY entry for Foreign module.
const ForeignSuffix = ".foreign.js"

// Options controls which files under Root are treated as module sources.
type Options struct {
	Root    string
	Include []string // doublestar patterns, relative to Root; defaults to **/*.js
	Exclude []string // doublestar patterns, relative to Root
}

// Found is one discovered module, split into its generated source and
// (if present) its foreign twin's source.
type Found struct {
	Name          string
	Source        string
	ForeignSource string
	HasForeign    bool
}

// Discover walks Options.Root, matching the include/exclude globs, and
// groups files by module name - `X.js` and `X.foreign.js` (for example
// `Foo.js`/`Foo.foreign.js` or `Foo/index.js`/`Foo/index.foreign.js`)
// are paired into one Found entry. A `.gitignore` in Root, if present, is honored
// the same way a plain git checkout would.
func Discover(opts Options) ([]Found, error) {
	include := opts.Include
	if len(include) == 0 {
		include = []string{"**/*.js"}
	}
	for _, pattern := range append(append([]string{}, include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("discover: invalid glob pattern %q", pattern)
		}
	}

	gi := loadGitIgnore(opts.Root)

	type rawFile struct {
		relPath string
		content string
	}
	var files []rawFile

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if gi != nil && gi.MatchesPath(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		// Generated modules are never vendored under node_modules, but a
		// project root handed to --root may still have one sitting next to
		// the generated output; never descend into it.
		if d.IsDir() {
			if d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		// Defence in depth against symlinks that step around the SkipDir
		// pruning above.
		if helpers.IsInsideNodeModules(relPath) {
			return nil
		}

		for _, pattern := range opts.Exclude {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				return nil
			}
		}
		matched := false
		for _, pattern := range include {
			if m, _ := doublestar.PathMatch(pattern, relPath); m {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files = append(files, rawFile{relPath: relPath, content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Found)
	var order []string
	var dupes []string
	for _, f := range files {
		name, isForeign := moduleNameFor(f.relPath)
		found, ok := byName[name]
		if !ok {
			found = &Found{Name: name}
			byName[name] = found
			order = append(order, name)
		}
		if isForeign {
			if found.HasForeign {
				dupes = append(dupes, name)
			}
			found.ForeignSource = f.content
			found.HasForeign = true
		} else {
			if found.Source != "" {
				dupes = append(dupes, name)
			}
			found.Source = f.content
		}
	}
	if len(dupes) > 0 {
		return nil, fmt.Errorf("discover: more than one source file maps to module(s) %s", helpers.StringArrayToQuotedCommaSeparatedString(dupes))
	}

	sort.Strings(order)
	out := make([]Found, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

// moduleNameFor derives a ModuleIdentifier name and foreign flag from a
// relative file path, stripping the `.foreign.js`/`.js` suffix.
func moduleNameFor(relPath string) (name string, isForeign bool) {
	if strings.HasSuffix(relPath, ForeignSuffix) {
		return strings.TrimSuffix(relPath, ForeignSuffix), true
	}
	return strings.TrimSuffix(relPath, ".js"), false
}

// Inputs converts discovered modules into bundle.Input values, ready for
// bundle.Bundle.
func Inputs(found []Found) []bundle.Input {
	out := make([]bundle.Input, 0, len(found))
	for _, f := range found {
		out = append(out, bundle.Input{Name: f.Name, Source: f.Source})
	}
	return out
}

func loadGitIgnore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
