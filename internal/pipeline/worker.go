package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/splice/internal/config"
	"github.com/dgallion1/splice/internal/resolve"
	"github.com/dgallion1/splice/internal/source"
)

// Worker runs builds. It holds no per-build state and is shared by all
// pool goroutines.
type Worker struct {
	fs     *source.Fs
	dirs   []string
	remote source.Loader
	stats  *BuildStats
	log    *slog.Logger

	pragmaOnce bool
	maxDepth   int
}

// NewWorker prepares the server-wide loaders. remote may be nil.
func NewWorker(cfg config.Config, remote source.Loader, stats *BuildStats, log *slog.Logger) (*Worker, error) {
	w := &Worker{
		remote:     remote,
		stats:      stats,
		log:        log,
		pragmaOnce: cfg.PragmaOnce,
		maxDepth:   cfg.MaxIncludeDepth,
	}
	if len(cfg.IncludeDirs) > 0 {
		w.fs = source.NewFs(cfg.IncludeDirs[0])
		for _, dir := range cfg.IncludeDirs[1:] {
			if err := w.fs.IncludeDir(dir); err != nil {
				return nil, err
			}
		}
		for _, dir := range w.fs.Dirs() {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, fmt.Errorf("include dir %s: %w", dir, err)
			}
			w.dirs = append(w.dirs, abs)
		}
	}
	return w, nil
}

// Build resolves req and collects the generated text.
func (w *Worker) Build(ctx context.Context, req Request) (*Result, error) {
	if req.Root == "" {
		return nil, fmt.Errorf("root is required")
	}

	pragmaOnce := w.pragmaOnce
	if req.PragmaOnce != nil {
		pragmaOnce = *req.PragmaOnce
	}
	maxDepth := w.maxDepth
	if req.MaxDepth > 0 && (maxDepth == 0 || req.MaxDepth < maxDepth) {
		maxDepth = req.MaxDepth
	}

	start := time.Now()
	root, err := resolve.Build(ctx, w.loader(req), req.Root,
		resolve.WithPragmaOnce(pragmaOnce),
		resolve.WithMaxDepth(maxDepth),
		resolve.WithLogger(w.log),
	)
	if w.stats != nil {
		w.stats.Record(time.Since(start), err != nil)
	}
	if err != nil {
		return nil, err
	}

	text, idx := root.Collect()
	return &Result{
		Text:        text,
		LineCount:   root.LineCount(),
		Files:       root.Files(),
		Index:       idx,
		ContentHash: ContentHashHex([]byte(text)),
	}, nil
}

// Process runs a queued job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "root", job.Root)

	job.SetStatus(StatusResolving, "resolving")
	res, err := w.Build(ctx, job.Request())
	if err != nil {
		log.Error("build failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "resolving")
		return
	}
	job.Complete(res)
	log.Info("build complete", "lines", res.LineCount, "files", len(res.Files))
}

// loader chains request files, then the include dirs, then the remote store.
func (w *Worker) loader(req Request) source.Loader {
	mem := source.NewMem()
	for name, content := range req.Files {
		mem.AddFile(name, content)
	}
	chain := source.NewChain(mem)
	if w.fs != nil {
		chain.Add(w.sandboxed(w.fs))
	}
	if w.remote != nil {
		chain.Add(w.remote)
	}
	return chain
}

// sandboxed keeps filesystem lookups inside the include dirs: names must be
// local paths and includer-relative lookups only apply to files read from
// those dirs.
func (w *Worker) sandboxed(fs source.Loader) source.Loader {
	return source.LoaderFunc(func(ctx context.Context, name, relativeTo string) (source.File, bool, error) {
		if !filepath.IsLocal(name) {
			return source.File{}, false, nil
		}
		if relativeTo != "" && !w.underIncludeDir(relativeTo) {
			relativeTo = ""
		}
		return fs.Read(ctx, name, relativeTo)
	})
}

func (w *Worker) underIncludeDir(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.dirs {
		if strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
