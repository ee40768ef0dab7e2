package webmachinery

import "net/http"

// Filter is an interface to be implemented by components that can wrap a
// new http.HandlerFunc around another http.HandlerFunc, typically to enrich
// the request context before the wrapped handler is invoked.
type Filter interface {
	// Decorate decorates one http.HandlerFunc with another
	Decorate(http.HandlerFunc) http.HandlerFunc
}

// FilterFunc adapts an ordinary function to the Filter interface.
type FilterFunc func(http.HandlerFunc) http.HandlerFunc

// Decorate calls f(handle).
func (f FilterFunc) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return f(handle)
}

// Chain returns a Filter that applies the provided filters in order, so the
// first filter is outermost.
func Chain(filters ...Filter) Filter {
	return FilterFunc(func(handle http.HandlerFunc) http.HandlerFunc {
		for i := len(filters) - 1; i >= 0; i-- {
			handle = filters[i].Decorate(handle)
		}
		return handle
	})
}
