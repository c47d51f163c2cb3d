package bundle

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser reads fenced code blocks whose info string names a file:
//
//	```c common.h
//	```glsl file=blur.frag
//
// Blocks without a file name are ignored.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]Entry, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var entries []Entry
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || block.Info == nil {
			return ast.WalkContinue, nil
		}
		name := infoFileName(string(block.Info.Segment.Value(src)))
		if name == "" {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		entries = append(entries, Entry{Name: name, Content: buf.String()})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// infoFileName extracts the file name from a fence info string: either a
// file= attribute or the word following the language.
func infoFileName(info string) string {
	fields := strings.Fields(info)
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "file="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	if len(fields) >= 2 && !strings.Contains(fields[1], "=") && !strings.HasPrefix(fields[1], "{") {
		return fields[1]
	}
	return ""
}
