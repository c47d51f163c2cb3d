package bundle

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser reads <script> elements holding non-JavaScript sources, the
// usual way WebGL pages embed shaders. The source name comes from the
// data-file attribute, or from id when the script type is not JavaScript.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var entries []Entry
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			if name := scriptName(n); name != "" {
				entries = append(entries, Entry{Name: name, Content: scriptText(n)})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return entries, nil
}

func scriptName(n *html.Node) string {
	if name := attr(n, "data-file"); name != "" {
		return name
	}
	typ := strings.ToLower(attr(n, "type"))
	if typ == "" || typ == "module" || strings.Contains(typ, "javascript") || strings.Contains(typ, "ecmascript") {
		return ""
	}
	return attr(n, "id")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// scriptText returns the raw script body without the newline that usually
// follows the opening tag.
func scriptText(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
	}
	s := buf.String()
	if rest, ok := strings.CutPrefix(s, "\r\n"); ok {
		return rest
	}
	return strings.TrimPrefix(s, "\n")
}
