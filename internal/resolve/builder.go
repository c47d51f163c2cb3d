// Package resolve builds include trees: it reads a root file through a
// loader, follows every #include directive recursively and returns the
// assembled srctree.Node.
package resolve

import (
	"context"
	"log/slog"

	"github.com/dgallion1/splice/internal/source"
	"github.com/dgallion1/splice/internal/srctree"
)

// Builder resolves include trees through a loader. A Builder holds no
// per-build state and may be reused.
type Builder struct {
	loader     source.Loader
	pragmaOnce bool
	maxDepth   int
	log        *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPragmaOnce enables #pragma once: a file carrying the pragma is
// expanded only the first time it is included in a build.
func WithPragmaOnce(on bool) Option {
	return func(b *Builder) { b.pragmaOnce = on }
}

// WithMaxDepth limits the number of files on the inclusion chain.
// Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(b *Builder) { b.maxDepth = n }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(log *slog.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

func New(loader source.Loader, opts ...Option) *Builder {
	b := &Builder{
		loader: loader,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves root and everything it includes. Any failure aborts the
// whole build and is returned as *Error.
func Build(ctx context.Context, loader source.Loader, root string, opts ...Option) (*srctree.Node, error) {
	return New(loader, opts...).Build(ctx, root)
}

func (b *Builder) Build(ctx context.Context, root string) (*srctree.Node, error) {
	r := &resolution{
		Builder:  b,
		active:   make(map[string]bool),
		expanded: make(map[string]bool),
		reads:    make(map[readKey]source.File),
		contents: make(map[string]string),
	}
	node, err := r.resolve(ctx, root, "")
	if err != nil {
		b.log.Debug("build failed", "root", root, "error", err)
		return nil, err
	}
	b.log.Debug("build complete", "root", node.Name, "files", len(r.expanded), "lines", node.LineCount())
	return node, nil
}

// resolution is the state of a single Build call.
type resolution struct {
	*Builder
	chain    []string        // identities of the files being parsed, root first
	frames   []Frame         // directive positions leading to the current file
	active   map[string]bool // set view of chain
	expanded map[string]bool // every file parsed so far

	// A file is read at most once per build; later includes see the first
	// content even if the backing store changes meanwhile.
	reads    map[readKey]source.File
	contents map[string]string // resolved identity -> content
}

type readKey struct {
	name, relativeTo string
}

func (r *resolution) read(ctx context.Context, name, relativeTo string) (source.File, bool, error) {
	key := readKey{name, relativeTo}
	if f, ok := r.reads[key]; ok {
		return f, true, nil
	}
	f, ok, err := r.loader.Read(ctx, name, relativeTo)
	if err != nil || !ok {
		return f, ok, err
	}
	if content, seen := r.contents[f.Name]; seen {
		f.Content = content
	} else {
		r.contents[f.Name] = f.Content
	}
	r.reads[key] = f
	return f, true, nil
}

func (r *resolution) resolve(ctx context.Context, name, relativeTo string) (*srctree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.fail(KindIO, name, err)
	}
	if r.maxDepth > 0 && len(r.chain) >= r.maxDepth {
		return nil, r.fail(KindDepthExceeded, name, nil)
	}

	f, ok, err := r.read(ctx, name, relativeTo)
	if err != nil {
		return nil, r.fail(KindIO, name, err)
	}
	if !ok {
		return nil, r.fail(KindFileNotFound, name, nil)
	}

	lines, terminated := srctree.SplitLines(f.Content)
	node := &srctree.Node{Name: f.Name, Lines: lines, Terminated: terminated}

	if r.pragmaOnce && hasPragmaOnce(lines) {
		if r.expanded[f.Name] {
			r.log.Debug("skipping #pragma once file", "file", f.Name)
			return &srctree.Node{Name: f.Name}, nil
		}
		for i, line := range lines {
			if pragmaOnceRe.MatchString(line) {
				lines[i] = ""
			}
		}
	}

	if r.active[f.Name] {
		return nil, r.cycle(f.Name)
	}
	r.expanded[f.Name] = true

	r.chain = append(r.chain, f.Name)
	r.active[f.Name] = true
	defer func() {
		r.chain = r.chain[:len(r.chain)-1]
		delete(r.active, f.Name)
	}()

	r.log.Debug("parsing file", "file", f.Name, "requested", name, "depth", len(r.chain))

	for i, line := range lines {
		d, ok, err := parseDirective(line)
		if !ok {
			continue
		}
		frame := Frame{File: f.Name, Line: i + 1}
		r.frames = append(r.frames, frame)
		if err != nil {
			e := r.fail(KindBadDirective, line, nil)
			r.frames = r.frames[:len(r.frames)-1]
			return nil, e
		}

		relTo := ""
		if d.quoted {
			relTo = f.Name
		}
		child, err := r.resolve(ctx, d.name, relTo)
		r.frames = r.frames[:len(r.frames)-1]
		if err != nil {
			return nil, err
		}
		node.Includes = append(node.Includes, srctree.Include{Line: i + 1, Node: child})
	}

	return node, nil
}

func (r *resolution) fail(kind Kind, name string, cause error) *Error {
	return &Error{
		Kind:  kind,
		Name:  name,
		Stack: append([]Frame(nil), r.frames...),
		Err:   cause,
	}
}

func (r *resolution) cycle(name string) *Error {
	e := r.fail(KindCyclicInclude, name, nil)
	for i, file := range r.chain {
		if file == name {
			e.Cycle = append(append([]string(nil), r.chain[i:]...), name)
			break
		}
	}
	return e
}
