package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/splice/internal/srctree"
)

// BuildCmd represents the build command
type BuildCmd struct {
	SourceFlags

	Root     string `arg:"" optional:"" help:"Root source file (defaults to the project root)"`
	Output   string `short:"o" help:"Write generated source here instead of stdout"`
	IndexOut string `help:"Write the line origin index as JSON"`
}

func (cmd *BuildCmd) Run(ctx *Context) error {
	s, err := newSession(ctx, cmd.SourceFlags, cmd.Root)
	if err != nil {
		return err
	}
	defer s.close()

	root, err := s.build(context.Background())
	if err != nil {
		return err
	}
	text, idx := root.Collect()

	if cmd.Output == "" {
		if _, err := io.WriteString(ctx.Stdout, text); err != nil {
			return err
		}
	} else if err := os.WriteFile(cmd.Output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if cmd.IndexOut != "" {
		data, err := json.MarshalIndent(idx.Origins(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cmd.IndexOut, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
	}

	s.log.Info("build complete", "root", s.root, "lines", root.LineCount(), "files", len(root.Files()))
	return nil
}

// LookupCmd represents the lookup command
type LookupCmd struct {
	SourceFlags

	Lines []int  `arg:"" help:"Generated line numbers (1-based)"`
	Root  string `help:"Root source file to build (defaults to the project root)"`
	Index string `help:"Read a saved index instead of building" type:"existingfile"`
}

func (cmd *LookupCmd) Run(ctx *Context) error {
	idx, err := cmd.index(ctx)
	if err != nil {
		return err
	}
	for _, n := range cmd.Lines {
		o, ok := idx.Search(n)
		if !ok {
			return fmt.Errorf("line %d out of range [1, %d]", n, idx.Len())
		}
		fmt.Fprintf(ctx.Stdout, "%d\t%s:%d\n", n, o.File, o.Line)
	}
	return nil
}

func (cmd *LookupCmd) index(ctx *Context) (*srctree.Index, error) {
	if cmd.Index != "" {
		data, err := os.ReadFile(cmd.Index)
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		var origins []srctree.Origin
		if err := json.Unmarshal(data, &origins); err != nil {
			return nil, fmt.Errorf("parse index %s: %w", cmd.Index, err)
		}
		return srctree.NewIndex(origins), nil
	}

	s, err := newSession(ctx, cmd.SourceFlags, cmd.Root)
	if err != nil {
		return nil, err
	}
	defer s.close()
	root, err := s.build(context.Background())
	if err != nil {
		return nil, err
	}
	_, idx := root.Collect()
	return idx, nil
}

// DepsCmd represents the deps command
type DepsCmd struct {
	SourceFlags

	Root string `arg:"" optional:"" help:"Root source file (defaults to the project root)"`
}

func (cmd *DepsCmd) Run(ctx *Context) error {
	s, err := newSession(ctx, cmd.SourceFlags, cmd.Root)
	if err != nil {
		return err
	}
	defer s.close()

	root, err := s.build(context.Background())
	if err != nil {
		return err
	}
	for _, name := range root.Files() {
		fmt.Fprintln(ctx.Stdout, name)
	}
	return nil
}
