// Package graph records render passes with declared attachment read and
// write sets, validates their ordering once at setup and runs them.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deferred-renderer/internal/logging"
)

var (
	ErrNoPasses        = errors.New("graph: no passes recorded")
	ErrDuplicatePass   = errors.New("graph: duplicate pass name")
	ErrDuplicateImport = errors.New("graph: attachment imported twice")
	ErrReadBeforeWrite = errors.New("graph: attachment read before any pass writes it")
)

// Pass is one node of the frame graph. F is the per-frame state handed to
// every pass.
type Pass[F any] interface {
	Name() string
	Reads() []string
	Writes() []string
	Execute(ctx context.Context, frame F) error
}

// Graph collects passes in submission order.
type Graph[F any] struct {
	imports []string
	passes  []Pass[F]
}

func New[F any]() *Graph[F] {
	return &Graph[F]{}
}

// Import declares attachments produced outside the graph, such as the
// G-buffer.
func (g *Graph[F]) Import(names ...string) {
	g.imports = append(g.imports, names...)
}

// Add appends a pass. Order of Add calls is execution order.
func (g *Graph[F]) Add(passes ...Pass[F]) {
	g.passes = append(g.passes, passes...)
}

// Edge is a producer→consumer dependency through one attachment.
type Edge struct {
	From, To   string
	Attachment string
}

// Compile validates the recorded order: every attachment a pass reads must
// be imported or written by an earlier pass.
func (g *Graph[F]) Compile() (*Plan[F], error) {
	if len(g.passes) == 0 {
		return nil, ErrNoPasses
	}

	const imported = -1
	producer := make(map[string]int)
	for _, name := range g.imports {
		if _, ok := producer[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateImport, name)
		}
		producer[name] = imported
	}

	names := make(map[string]bool, len(g.passes))
	readers := make(map[string][]int)
	level := make([]int, len(g.passes))
	plan := &Plan[F]{passes: g.passes}

	for i, p := range g.passes {
		name := p.Name()
		if names[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePass, name)
		}
		names[name] = true

		for _, a := range p.Reads() {
			src, ok := producer[a]
			if !ok {
				return nil, fmt.Errorf("%w: pass %s reads %s", ErrReadBeforeWrite, name, a)
			}
			if src != imported {
				plan.Edges = append(plan.Edges, Edge{From: g.passes[src].Name(), To: name, Attachment: a})
				level[i] = max(level[i], level[src]+1)
			}
			readers[a] = append(readers[a], i)
		}
		for _, a := range p.Writes() {
			// a writer must follow earlier readers and the previous writer
			for _, r := range readers[a] {
				if r != i {
					level[i] = max(level[i], level[r]+1)
				}
			}
			if src, ok := producer[a]; ok && src != imported && src != i {
				level[i] = max(level[i], level[src]+1)
			}
			producer[a] = i
			readers[a] = nil
		}
	}

	for i, p := range g.passes {
		for len(plan.Levels) <= level[i] {
			plan.Levels = append(plan.Levels, nil)
		}
		plan.Levels[level[i]] = append(plan.Levels[level[i]], p.Name())
	}
	return plan, nil
}

// Plan is a validated, immutable pass sequence.
type Plan[F any] struct {
	passes []Pass[F]
	Edges  []Edge
	// Levels groups passes whose dependencies are all in earlier levels.
	Levels [][]string
}

// Passes returns the pass names in execution order.
func (p *Plan[F]) Passes() []string {
	out := make([]string, len(p.passes))
	for i, pass := range p.passes {
		out[i] = pass.Name()
	}
	return out
}

func (p *Plan[F]) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(p.Passes(), " -> "))
	for _, e := range p.Edges {
		fmt.Fprintf(&b, "\n  %s -[%s]-> %s", e.From, e.Attachment, e.To)
	}
	return b.String()
}

// Run executes every pass in order. It stops at the first failing pass or
// when ctx is cancelled between passes.
func (p *Plan[F]) Run(ctx context.Context, frame F) error {
	log := logging.Logger()
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := pass.Execute(ctx, frame); err != nil {
			return fmt.Errorf("graph: pass %s: %w", pass.Name(), err)
		}
		log.Debug("pass done", "pass", pass.Name(), "elapsed", time.Since(start))
	}
	return nil
}
