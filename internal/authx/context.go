package authx

import "context"

type valueContextKey struct{}

// ContextWithValue returns a copy of ctx carrying v.
func ContextWithValue(ctx context.Context, v Value) context.Context {
	return context.WithValue(ctx, valueContextKey{}, v)
}

// FromContext returns the Value carried by ctx. It panics if ctx was not
// derived from a context returned by ContextWithValue, since that indicates a
// consumer was wired up outside of any Provider.
func FromContext(ctx context.Context) Value {
	v, ok := ctx.Value(valueContextKey{}).(Value)
	if !ok {
		panic("authx.FromContext called without an auth provider in context")
	}
	return v
}
