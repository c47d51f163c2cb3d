// Package source provides the loading backends that turn an include name
// into file content.
package source

import "context"

// File is a loaded source file. Name is the resolved identity of the file:
// children included from it are resolved relative to Name, and diagnostics
// refer to it.
type File struct {
	Name    string
	Content string
}

// Loader fetches the content of a named file.
//
// relativeTo is the identity of the including file, or empty for the root
// file and for system (angle-bracket) includes. A loader that has no such
// file returns found == false and a nil error; errors are reserved for
// abnormal conditions such as I/O or permission failures.
type Loader interface {
	Read(ctx context.Context, name, relativeTo string) (f File, found bool, err error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, name, relativeTo string) (File, bool, error)

func (fn LoaderFunc) Read(ctx context.Context, name, relativeTo string) (File, bool, error) {
	return fn(ctx, name, relativeTo)
}
