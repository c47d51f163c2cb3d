package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/splice/internal/bundle"
	"github.com/dgallion1/splice/internal/config"
	"github.com/dgallion1/splice/internal/pathstore"
	"github.com/dgallion1/splice/internal/resolve"
	"github.com/dgallion1/splice/internal/source"
	"github.com/dgallion1/splice/internal/srctree"
)

const defaultMaxDepth = 64

// SourceFlags are shared by every command that runs a build.
type SourceFlags struct {
	Include      []string `short:"I" help:"Add an include search directory"`
	Bundle       []string `help:"Load named sources from a bundle (.md, .html, .csv, .txt)"`
	PragmaOnce   bool     `help:"Honor #pragma once"`
	MaxDepth     int      `help:"Maximum include nesting, 0 for unlimited (default 64)" default:"-1"`
	Remote       string   `help:"Pathstore URL to read missing sources from"`
	RemoteKey    string   `help:"Pathstore API key" env:"PATHSTORE_API_KEY"`
	RemotePrefix string   `help:"Pathstore key prefix"`
}

// session holds the merged project and flag settings for one command.
type session struct {
	root       string
	log        *slog.Logger
	loader     source.Loader
	pragmaOnce bool
	maxDepth   int
	close      func()
}

func loadProject(path string) (*config.Project, error) {
	if path == config.DefaultProjectFile {
		return config.LoadProjectOrDefault(path)
	}
	return config.LoadProject(path)
}

// newSession merges the project file with flags; flags win, list flags
// append to the project's lists.
func newSession(ctx *Context, flags SourceFlags, root string) (*session, error) {
	log := ctx.Logger()

	project, err := loadProject(ctx.Config)
	if err != nil {
		return nil, err
	}
	if root == "" {
		root = project.Root
	}
	if root == "" {
		return nil, fmt.Errorf("no root file given and none set in %s", ctx.Config)
	}

	s := &session{
		root:       root,
		log:        log,
		pragmaOnce: flags.PragmaOnce || project.PragmaOnce,
		maxDepth:   defaultMaxDepth,
		close:      func() {},
	}
	switch {
	case flags.MaxDepth >= 0:
		s.maxDepth = flags.MaxDepth
	case project.MaxDepth > 0:
		s.maxDepth = project.MaxDepth
	}

	chain := source.NewChain()

	bundles := append(append([]string{}, project.Bundles...), flags.Bundle...)
	if len(bundles) > 0 {
		mem := source.NewMem()
		for _, path := range bundles {
			n, err := bundle.Load(path, mem)
			if err != nil {
				return nil, err
			}
			log.Debug("loaded bundle", "path", path, "sources", n)
		}
		chain.Add(mem)
	}

	fs := source.NewFs("")
	for _, dir := range append(append([]string{}, project.IncludeDirs...), flags.Include...) {
		if err := fs.IncludeDir(dir); err != nil {
			return nil, err
		}
	}
	chain.Add(fs)

	remote := project.Remote
	if flags.Remote != "" {
		remote.URL = flags.Remote
	}
	if flags.RemoteKey != "" {
		remote.APIKey = flags.RemoteKey
	}
	if flags.RemotePrefix != "" {
		remote.Prefix = flags.RemotePrefix
	}
	if remote.URL != "" {
		client := pathstore.NewClient(remote.URL, remote.APIKey)
		chain.Add(pathstore.NewLoader(client, remote.Prefix, pathstore.WithLogger(log)))
		s.close = client.Close
	}

	s.loader = chain
	return s, nil
}

func (s *session) build(ctx context.Context) (*srctree.Node, error) {
	s.log.Debug("building", "root", s.root, "pragma_once", s.pragmaOnce, "max_depth", s.maxDepth)
	return resolve.Build(ctx, s.loader, s.root,
		resolve.WithPragmaOnce(s.pragmaOnce),
		resolve.WithMaxDepth(s.maxDepth),
		resolve.WithLogger(s.log),
	)
}
