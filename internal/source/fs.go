package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Fs reads files from disk. Relative names are looked up next to the
// including file first, then in each search directory in the order added.
type Fs struct {
	dirs []string
}

// NewFs returns a filesystem loader rooted at baseDir. An empty baseDir
// means the process working directory.
func NewFs(baseDir string) *Fs {
	if baseDir == "" {
		baseDir = "."
	}
	return &Fs{dirs: []string{baseDir}}
}

// IncludeDir appends a search directory. The path must be an existing
// directory.
func (l *Fs) IncludeDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("include dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("include dir: %q is not a directory", dir)
	}
	l.dirs = append(l.dirs, dir)
	return nil
}

// Dirs returns the search directories in lookup order.
func (l *Fs) Dirs() []string {
	return append([]string(nil), l.dirs...)
}

func (l *Fs) Read(_ context.Context, name, relativeTo string) (File, bool, error) {
	path, ok, err := l.find(name, relativeTo)
	if err != nil || !ok {
		return File{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	return File{Name: path, Content: string(data)}, true, nil
}

func (l *Fs) find(name, relativeTo string) (string, bool, error) {
	if filepath.IsAbs(name) {
		return checkFile(filepath.Clean(name))
	}

	if relativeTo != "" {
		path, ok, err := checkFile(filepath.Join(filepath.Dir(relativeTo), name))
		if err != nil || ok {
			return path, ok, err
		}
	}

	for _, dir := range l.dirs {
		path, ok, err := checkFile(filepath.Join(dir, name))
		if err != nil || ok {
			return path, ok, err
		}
	}
	return "", false, nil
}

// checkFile reports whether path names a regular file. A missing path is
// not an error.
func checkFile(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("%q is not a file", path)
	}
	return path, true, nil
}
