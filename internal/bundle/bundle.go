// Package bundle decodes documents that carry several named sources, such
// as a Markdown file with one fenced block per header or an HTML page with
// shader <script> elements, and registers them with an in-memory loader.
package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/splice/internal/source"
)

// Entry is one named source found in a bundle.
type Entry struct {
	Name    string
	Content string
}

// Parser extracts the sources held by a bundle document.
type Parser interface {
	Parse(r io.Reader, filename string) ([]Entry, error)
}

// SupportedExtensions lists bundle file extensions.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".csv":      true,
	".txt":      true,
}

// ForFile returns the parser for a bundle filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported bundle extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Decode parses a bundle read from r and adds its sources to mem. It returns
// the number of sources added.
func Decode(r io.Reader, filename string, mem *source.Mem) (int, error) {
	p, err := ForFile(filename)
	if err != nil {
		return 0, err
	}
	entries, err := p.Parse(r, filename)
	if err != nil {
		return 0, fmt.Errorf("bundle %s: %w", filename, err)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Name] {
			return 0, fmt.Errorf("bundle %s: duplicate source %q", filename, e.Name)
		}
		seen[e.Name] = true
	}
	for _, e := range entries {
		mem.AddFile(e.Name, e.Content)
	}
	return len(entries), nil
}

// Load decodes the bundle file at path into mem.
func Load(path string, mem *source.Mem) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return Decode(f, filepath.Base(path), mem)
}
