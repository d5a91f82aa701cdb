package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/go-github/v57/github"
)

// NewGitHubClient starts a test server running handler and returns a
// go-github client pointed at it. The server is closed when the test ends.
func NewGitHubClient(t *testing.T, handler http.Handler) (*github.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, err := client.BaseURL.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	client.BaseURL = baseURL

	return client, server
}

// WriteJSON encodes v as the response body. When nextPage is positive a
// Link header pointing at that page is added, which go-github reports as
// Response.NextPage.
func WriteJSON(t *testing.T, w http.ResponseWriter, r *http.Request, v any, nextPage int) {
	t.Helper()

	if nextPage > 0 {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(nextPage))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// Page returns the 1-based page number requested by r.
func Page(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
