// Package srctree holds the resolved include tree and flattens it into
// generated text with a per-line origin index.
package srctree

import "strings"

// Node is one resolved source file.
type Node struct {
	Name       string    // Resolved identity of the file
	Lines      []string  // Raw lines, include directives kept in place
	Includes   []Include // Include points ordered by Line
	Terminated bool      // Content ended with a newline
}

// Include attaches a child tree at the 1-based line of its directive.
type Include struct {
	Line int
	Node *Node
}

// NewNode splits content into lines and returns a node without includes.
func NewNode(name, content string) *Node {
	lines, terminated := SplitLines(content)
	return &Node{Name: name, Lines: lines, Terminated: terminated}
}

// SplitLines splits content on '\n'. A final newline ends the last line
// rather than starting an empty one; carriage returns stay in the lines.
func SplitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1], true
	}
	return lines, false
}

// LineCount returns the number of generated lines this node expands to,
// descendants included.
func (n *Node) LineCount() int {
	count := len(n.Lines) - len(n.Includes)
	for _, inc := range n.Includes {
		count += inc.Node.LineCount()
	}
	return count
}

// Files lists the distinct file identities in the tree in the order they
// are first reached.
func (n *Node) Files() []string {
	seen := make(map[string]bool)
	var files []string
	var walk func(*Node)
	walk = func(node *Node) {
		if !seen[node.Name] {
			seen[node.Name] = true
			files = append(files, node.Name)
		}
		for _, inc := range node.Includes {
			walk(inc.Node)
		}
	}
	walk(n)
	return files
}

// Collect flattens the tree. Include directive lines are replaced by the
// expansion of their child; every emitted line gets an index entry naming
// the file it was read from.
func (n *Node) Collect() (string, *Index) {
	total := n.LineCount()
	out := make([]string, 0, total)
	idx := &Index{origins: make([]Origin, 0, total)}
	n.collect(&out, idx)

	text := strings.Join(out, "\n")
	if n.Terminated && len(out) > 0 {
		text += "\n"
	}
	return text, idx
}

func (n *Node) collect(out *[]string, idx *Index) {
	next := 0
	for i, line := range n.Lines {
		lineNo := i + 1
		if next < len(n.Includes) && n.Includes[next].Line == lineNo {
			n.Includes[next].Node.collect(out, idx)
			next++
			continue
		}
		*out = append(*out, line)
		idx.origins = append(idx.origins, Origin{File: n.Name, Line: lineNo})
	}
}
