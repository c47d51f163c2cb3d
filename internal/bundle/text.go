package bundle

import (
	"io"
	"path/filepath"
)

// TextParser treats the whole document as a single source named after the
// file.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return []Entry{{Name: filepath.Base(filename), Content: string(data)}}, nil
}
