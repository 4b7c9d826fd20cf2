package basedata

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeUpstream serves canned OpenF1 payloads by request path
type FakeUpstream struct {
	*httptest.Server
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]int
	calls     map[string]int
	queries   map[string][]string
}

// NewFakeUpstream starts a server with the sample responses.
// The server is closed when the test finishes.
func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()
	f := &FakeUpstream{
		responses: SampleResponses(),
		failures:  map[string]int{},
		calls:     map[string]int{},
		queries:   map[string][]string{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.RawQuery)
	status, failing := f.failures[r.URL.Path]
	body, found := f.responses[r.URL.Path]
	f.mu.Unlock()

	switch {
	case failing:
		http.Error(w, "upstream failure", status)
	case !found:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // test server
		w.Write([]byte(body))
	}
}

func (f *FakeUpstream) Set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = body
}

// Fail makes path answer with status until Recover is called
func (f *FakeUpstream) Fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

func (f *FakeUpstream) Recover(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, path)
}

func (f *FakeUpstream) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *FakeUpstream) Queries(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries[path]...)
}
