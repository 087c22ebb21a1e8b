// Package jsparse is the Parser adapter named in spec.md §2: it is the
// only place the restricted-subset classifier touches a real JavaScript
// grammar. It wraps github.com/tree-sitter/go-tree-sitter with the
// tree-sitter-javascript grammar, pooled the way gnana997-uispec's
// pkg/parser manages its tree-sitter parsers, trimmed down to the single
// grammar this bundler needs.
package jsparse

import (
	"fmt"
	"runtime"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Pool hands out tree-sitter parsers for concurrent module parsing
// (spec.md §5 allows parallelised parsing as long as later stages are
// deterministic). Parsers are created lazily up to maxSize and reused.
type Pool struct {
	parsers chan *ts.Parser
	mu      sync.Mutex
	created int
	maxSize int
}

// NewPool creates a parser pool sized to the number of available CPUs,
// capped at 8 — parsing a module is fast enough that more than a handful
// of concurrent parsers rarely pays for itself.
func NewPool() *Pool {
	size := runtime.NumCPU()
	if size > 8 {
		size = 8
	}
	if size < 1 {
		size = 1
	}
	return &Pool{parsers: make(chan *ts.Parser, size), maxSize: size}
}

func (p *Pool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.parsers:
		return parser, nil
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created >= p.maxSize {
		return <-p.parsers, nil
	}

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("jsparse: failed to create tree-sitter parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(ts_javascript.Language())); err != nil {
		parser.Close()
		return nil, fmt.Errorf("jsparse: failed to set javascript grammar: %w", err)
	}
	p.created++
	return parser, nil
}

func (p *Pool) release(parser *ts.Parser) {
	select {
	case p.parsers <- parser:
	default:
		parser.Close()
	}
}

// Close releases every pooled parser. Call once the whole bundle pipeline
// has finished parsing.
func (p *Pool) Close() {
	close(p.parsers)
	for parser := range p.parsers {
		parser.Close()
	}
}

// Parse parses one module's source text into a tree-sitter concrete syntax
// tree. The caller owns the returned Tree and must call Close() on it once
// the classifier and dependency analyser are done walking it.
func (p *Pool) Parse(source string) (*ts.Tree, error) {
	parser, err := p.acquire()
	if err != nil {
		return nil, err
	}
	defer p.release(parser)

	tree := parser.Parse([]byte(source), nil)
	if tree == nil {
		return nil, fmt.Errorf("jsparse: parser returned no tree")
	}
	return tree, nil
}
