package download

import (
	"bytes"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

var testModTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

// generateTestContent returns size bytes of deterministic pseudo-random content
func generateTestContent(size int64) []byte {
	content := make([]byte, size)
	rnd := rand.New(rand.NewSource(size))
	_, _ = rnd.Read(content)
	return content
}

// testServer serves content at every path with Range, HEAD and Last-Modified support and
// records the Range header of every GET.
type testServer struct {
	*httptest.Server
	mu     sync.Mutex
	ranges []string
}

func newTestServer(t *testing.T, content []byte) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ts.mu.Lock()
			ts.ranges = append(ts.ranges, r.Header.Get("Range"))
			ts.mu.Unlock()
		}
		http.ServeContent(w, r, "", testModTime, bytes.NewReader(content))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) getRequests() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.ranges...)
}

func int64Ptr(v int64) *int64 {
	return &v
}
