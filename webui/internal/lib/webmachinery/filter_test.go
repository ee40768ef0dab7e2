package webmachinery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	var order []string
	filter := func(name string) Filter {
		return FilterFunc(func(handle http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				handle(w, r)
			}
		})
	}
	handlerCalled := false
	Chain(filter("outer"), filter("inner")).Decorate(
		func(http.ResponseWriter, *http.Request) {
			handlerCalled = true
		},
	)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, handlerCalled)
	require.Equal(t, []string{"outer", "inner"}, order)
}
