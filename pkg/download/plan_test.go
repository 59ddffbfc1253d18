package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planURL = "http://files.example.com/data/archive.bin"

// remoteHeaders builds a mocked client whose HEAD responses carry the given size and
// modification time, either of which may be omitted.
func remoteHeaders(t *testing.T, status int, size *int64, modTime *time.Time) *http.Client {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodHead, planURL, func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, "")
		if size != nil {
			resp.Header.Set("Content-Length", fmt.Sprint(*size))
		}
		if modTime != nil {
			resp.Header.Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
		}
		return resp, nil
	})
	return &http.Client{Transport: transport}
}

func writeLocal(t *testing.T, path string, size int, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestPrepareLocalMissing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "deeper", "archive.bin")
	httpClient := remoteHeaders(t, http.StatusOK, int64Ptr(100), &testModTime)

	plan, ok, err := Prepare(context.Background(), httpClient, planURL, dest, nil)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, DecisionDownload, plan.Decision)
	assert.Equal(t, dest, plan.Dest)
	assert.Equal(t, "archive.bin", plan.Filename)
	assert.Equal(t, int64(100), *plan.Size)
	assert.True(t, plan.RemoteModTime.Equal(testModTime))
	assert.DirExists(t, filepath.Dir(dest))
}

func TestPrepareRemoteMissing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "sub", "archive.bin")
	httpClient := remoteHeaders(t, http.StatusNotFound, nil, nil)

	_, ok, err := Prepare(context.Background(), httpClient, planURL, dest, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoDirExists(t, filepath.Join(dir, "sub"))
}

func TestPrepareDirectoryDestination(t *testing.T) {
	dir := t.TempDir()
	httpClient := remoteHeaders(t, http.StatusOK, int64Ptr(10), nil)

	plan, ok, err := Prepare(context.Background(), httpClient, planURL, dir, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "archive.bin"), plan.Dest)

	notYet := filepath.Join(dir, "later") + "/"
	plan, ok, err = Prepare(context.Background(), httpClient, planURL, notYet, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "later", "archive.bin"), plan.Dest)
	assert.DirExists(t, filepath.Join(dir, "later"))
}

func TestPrepareDirectoryDestinationStaysInDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")
	server := newTestServer(t, make([]byte, 10))
	escapingURL := server.URL + "/x/..%2F..%2Fescaped.bin"

	plan, ok, err := Prepare(context.Background(), server.Client(), escapingURL, dir+"/", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "escaped.bin"), plan.Dest)
	assert.Equal(t, dir, filepath.Dir(plan.Dest))
}

func TestPrepareDirectoryDestinationWithoutFilename(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodHead, "http://files.example.com/", httpmock.NewStringResponder(http.StatusOK, ""))

	_, _, err := Prepare(context.Background(), &http.Client{Transport: transport}, "http://files.example.com/", t.TempDir(), nil)
	assert.Error(t, err)
}

func TestPrepareDecisionTable(t *testing.T) {
	const localSize = 100
	localTime := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	older := localTime.Add(-time.Hour)
	newer := localTime.Add(time.Hour)

	sizeCases := []struct {
		name       string
		size       *int64
		comparison Comparison
	}{
		{"size equal", int64Ptr(localSize), Equal},
		{"size unequal", int64Ptr(localSize + 1), Unequal},
		{"size unknown", nil, Unknown},
	}
	timeCases := []struct {
		name       string
		modTime    *time.Time
		comparison Comparison
	}{
		{"remote older", &older, Equal},
		{"remote same", &localTime, Equal},
		{"remote newer", &newer, Unequal},
		{"time unknown", nil, Unknown},
	}

	for _, sc := range sizeCases {
		for _, tc := range timeCases {
			t.Run(sc.name+"/"+tc.name, func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "archive.bin")
				writeLocal(t, dest, localSize, localTime)
				httpClient := remoteHeaders(t, http.StatusOK, sc.size, tc.modTime)

				plan, ok, err := Prepare(context.Background(), httpClient, planURL, dest, nil)
				require.NoError(t, err)
				require.True(t, ok)

				assert.Equal(t, sc.comparison, plan.Sizes)
				assert.Equal(t, tc.comparison, plan.ModTime)
				assert.Equal(t, Decide(sc.comparison, tc.comparison), plan.Decision)

				switch {
				case sc.comparison == Unequal || tc.comparison == Unequal:
					assert.Equal(t, DecisionDownload, plan.Decision)
				case sc.comparison == Unknown && tc.comparison == Unknown:
					assert.Equal(t, DecisionUnresolved, plan.Decision)
					_, err := plan.ShouldDownload()
					assert.ErrorIs(t, err, ErrAmbiguousFreshness)
				default:
					assert.Equal(t, DecisionSkip, plan.Decision)
				}
			})
		}
	}
}

func TestPrepareKnownSizeUsedForComparison(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "archive.bin")
	writeLocal(t, dest, 64, testModTime)
	httpClient := remoteHeaders(t, http.StatusOK, nil, nil)

	plan, ok, err := Prepare(context.Background(), httpClient, planURL, dest, int64Ptr(64))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Equal, plan.Sizes)
	assert.Equal(t, DecisionSkip, plan.Decision)
}
