package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRedirectFollowsChain(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/canonical/path", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/canonical/path", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	resolved := resolveRedirect(context.Background(), server.Client(), server.URL+"/short")
	assert.Equal(t, server.URL+"/canonical/path", resolved)
}

func TestResolveRedirectFailureReturnsOriginal(t *testing.T) {
	original := "http://127.0.0.1:1/unreachable"
	resolved := resolveRedirect(context.Background(), &http.Client{}, original)
	assert.Equal(t, original, resolved)
}
