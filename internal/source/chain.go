package source

import (
	"context"
	"reflect"
)

// Chain tries a sequence of loaders in order and returns the first file
// found. A hard error from any loader aborts the lookup; loaders after it
// are not consulted.
type Chain struct {
	loaders []Loader
}

func NewChain(loaders ...Loader) *Chain {
	c := &Chain{}
	for _, l := range loaders {
		c.Add(l)
	}
	return c
}

// Add appends a loader. Insertion order is try order. Nil loaders, including
// nil pointers of a concrete loader type, are skipped.
func (c *Chain) Add(l Loader) *Chain {
	if !isNil(l) {
		c.loaders = append(c.loaders, l)
	}
	return c
}

func isNil(l Loader) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Len returns the number of loaders in the chain.
func (c *Chain) Len() int {
	return len(c.loaders)
}

func (c *Chain) Read(ctx context.Context, name, relativeTo string) (File, bool, error) {
	for _, l := range c.loaders {
		f, ok, err := l.Read(ctx, name, relativeTo)
		if err != nil {
			return File{}, false, err
		}
		if ok {
			return f, true, nil
		}
	}
	return File{}, false, nil
}
