package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/splice/internal/source"
)

func TestMarkdownParser_NamedBlocks(t *testing.T) {
	input := `# Shaders

Shared helpers:

~~~glsl common.glsl
float luma(vec3 c) { return dot(c, vec3(0.299, 0.587, 0.114)); }
~~~

An unnamed example is ignored:

~~~glsl
void nothing() {}
~~~

~~~glsl file=blur.frag
#include "common.glsl"
void main() {}
~~~
`
	p := &MarkdownParser{}
	entries, err := p.Parse(strings.NewReader(input), "shaders.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "common.glsl" {
		t.Errorf("expected %q, got %q", "common.glsl", entries[0].Name)
	}
	want := "float luma(vec3 c) { return dot(c, vec3(0.299, 0.587, 0.114)); }\n"
	if entries[0].Content != want {
		t.Errorf("content = %q, want %q", entries[0].Content, want)
	}
	if entries[1].Name != "blur.frag" {
		t.Errorf("expected %q, got %q", "blur.frag", entries[1].Name)
	}
	if entries[1].Content != "#include \"common.glsl\"\nvoid main() {}\n" {
		t.Errorf("unexpected content %q", entries[1].Content)
	}
}

func TestMarkdownParser_BacktickFence(t *testing.T) {
	input := "```c util.h\nint util(void);\n```\n"
	entries, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "util.h" || entries[0].Content != "int util(void);\n" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestInfoFileName(t *testing.T) {
	tests := []struct {
		info string
		want string
	}{
		{"c header.h", "header.h"},
		{"glsl file=blur.frag", "blur.frag"},
		{`glsl file="quoted.frag"`, "quoted.frag"},
		{"c", ""},
		{"", ""},
		{"go {linenos=true}", ""},
		{"c title=x", ""},
	}
	for _, tt := range tests {
		if got := infoFileName(tt.info); got != tt.want {
			t.Errorf("infoFileName(%q) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestHTMLParser_ShaderScripts(t *testing.T) {
	input := `<!doctype html>
<html><head>
<script type="x-shader/x-vertex" id="main.vert">
attribute vec2 pos;
#include "common.glsl"
</script>
<script data-file="common.glsl">
precision mediump float;
</script>
<script type="text/javascript" id="app">console.log(1)</script>
<script>var x = 1;</script>
</head><body></body></html>`

	entries, err := (&HTMLParser{}).Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "main.vert" {
		t.Errorf("expected %q, got %q", "main.vert", entries[0].Name)
	}
	if entries[0].Content != "attribute vec2 pos;\n#include \"common.glsl\"\n" {
		t.Errorf("unexpected content %q", entries[0].Content)
	}
	if entries[1].Name != "common.glsl" || entries[1].Content != "precision mediump float;\n" {
		t.Errorf("unexpected entry %+v", entries[1])
	}
}

func TestCSVParser(t *testing.T) {
	input := "Name,Content\n" +
		"a.h,\"int a;\n\"\n" +
		"b.h,\"#include \"\"a.h\"\"\nint b;\n\"\n" +
		",ignored\n"

	entries, err := (&CSVParser{}).Parse(strings.NewReader(input), "files.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Name != "b.h" || entries[1].Content != "#include \"a.h\"\nint b;\n" {
		t.Errorf("unexpected entry %+v", entries[1])
	}
}

func TestCSVParser_MissingColumns(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader("file,body\na,b\n"), "files.csv")
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.md", "A.MARKDOWN", "b.html", "c.htm", "d.csv", "e.txt"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("notes.pdf"); err == nil {
		t.Error("expected error for .pdf")
	}
	if IsSupportedExtension("main.c") {
		t.Error("main.c should not be a bundle")
	}
}

func TestTextParser(t *testing.T) {
	mem := source.NewMem()
	n, err := Decode(strings.NewReader("line one\nline two\n"), "notes/readme.txt", mem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 source, got %d", n)
	}
	f, found, _ := mem.Read(context.Background(), "readme.txt", "")
	if !found || f.Content != "line one\nline two\n" {
		t.Errorf("unexpected source %+v found=%v", f, found)
	}
}

func TestDecode_DuplicateName(t *testing.T) {
	input := "name,content\na.h,one\na.h,two\n"
	mem := source.NewMem()
	if _, err := Decode(strings.NewReader(input), "dup.csv", mem); err == nil {
		t.Fatal("expected duplicate error")
	}
	if mem.Len() != 0 {
		t.Errorf("expected nothing registered, got %d", mem.Len())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.md")
	content := "~~~c lib.h\nint lib(void);\n~~~\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := source.NewMem()
	n, err := Load(path, mem)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 source, got %d", n)
	}
	f, found, err := mem.Read(context.Background(), "lib.h", "")
	if err != nil || !found {
		t.Fatalf("lib.h not registered: found=%v err=%v", found, err)
	}
	if f.Content != "int lib(void);\n" {
		t.Errorf("content = %q", f.Content)
	}
}
