package pathstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dgallion1/splice/internal/source"
)

// Loader reads include sources from pathstore keys under a prefix. It
// implements source.Loader.
type Loader struct {
	client      *Client
	prefix      string
	maxAttempts int
	backoff     func(attempt int) time.Duration
	log         *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBackoff replaces the delay used between retries.
func WithBackoff(fn func(attempt int) time.Duration) LoaderOption {
	return func(l *Loader) { l.backoff = fn }
}

// WithMaxAttempts sets how many times a transient failure is tried.
func WithMaxAttempts(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

func NewLoader(client *Client, prefix string, opts ...LoaderOption) *Loader {
	l := &Loader{
		client:      client,
		prefix:      strings.Trim(prefix, "/"),
		maxAttempts: MaxAttempts,
		backoff:     Backoff,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Read looks up name, trying the includer's directory first when
// relativeTo is set.
func (l *Loader) Read(ctx context.Context, name, relativeTo string) (source.File, bool, error) {
	for _, cand := range candidates(name, relativeTo) {
		node, err := l.get(ctx, l.key(cand))
		if err != nil {
			return source.File{}, false, fmt.Errorf("pathstore %s: %w", cand, err)
		}
		if node == nil {
			continue
		}
		text, err := node.Text()
		if err != nil {
			return source.File{}, false, err
		}
		return source.File{Name: cand, Content: text}, true, nil
	}
	return source.File{}, false, nil
}

func (l *Loader) key(name string) string {
	if l.prefix == "" {
		return name
	}
	return l.prefix + "/" + name
}

func (l *Loader) get(ctx context.Context, key string) (*NodeResponse, error) {
	for attempt := 0; ; attempt++ {
		node, err := l.client.GetNode(ctx, key)
		if err == nil {
			return node, nil
		}
		if !IsRetryable(err) || attempt+1 >= l.maxAttempts {
			return nil, err
		}
		wait := l.backoff(attempt)
		l.log.Warn("pathstore read failed, retrying", "key", key, "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func candidates(name, relativeTo string) []string {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if relativeTo == "" || strings.HasPrefix(name, "/") {
		return []string{clean}
	}
	rel := strings.TrimPrefix(path.Join("/", path.Dir(relativeTo), name), "/")
	if rel == clean {
		return []string{clean}
	}
	return []string{rel, clean}
}
