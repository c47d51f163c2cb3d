package source

import (
	"context"
	"sort"
	"sync"
)

// Mem serves files from an in-memory registry keyed by exact name.
// It ignores relativeTo.
type Mem struct {
	mu    sync.RWMutex
	files map[string]string
}

func NewMem() *Mem {
	return &Mem{files: make(map[string]string)}
}

// AddFile registers content under name. Registering the same name again
// replaces the previous content.
func (m *Mem) AddFile(name, content string) *Mem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
	return m
}

// Names returns the registered names in sorted order.
func (m *Mem) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered files.
func (m *Mem) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func (m *Mem) Read(_ context.Context, name, _ string) (File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[name]
	if !ok {
		return File{}, false, nil
	}
	return File{Name: name, Content: content}, true, nil
}
