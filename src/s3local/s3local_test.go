package s3local

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer(t *testing.T) {
	h := NewHandler(t.TempDir())

	res := do(t, h, http.MethodGet, "/portal-studio/studio/state.json", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "<Code>NoSuchBucket</Code>")

	res = do(t, h, http.MethodPut, "/portal-studio/studio/state.json", `{"version":1}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "<Code>NoSuchBucket</Code>")

	res = do(t, h, http.MethodPut, "/portal-studio", "")
	require.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodGet, "/portal-studio/studio/state.json", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "<Code>NoSuchKey</Code>")

	res = do(t, h, http.MethodPut, "/portal-studio/studio/state.json", `{"version":1}`)
	require.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodGet, "/portal-studio/studio/state.json", "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, `{"version":1}`, res.Body.String())

	res = do(t, h, http.MethodHead, "/portal-studio/studio/state.json", "")
	assert.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodDelete, "/portal-studio/studio/state.json", "")
	assert.Equal(t, http.StatusNotImplemented, res.Code)
}

func TestBucketKey(t *testing.T) {
	bucket, key, ok := bucketKey("/portal-studio/studio/state.json")
	assert.True(t, ok)
	assert.Equal(t, "portal-studio", bucket)
	assert.Equal(t, "studio/state.json", key)

	bucket, key, ok = bucketKey("/portal-studio")
	assert.True(t, ok)
	assert.Equal(t, "portal-studio", bucket)
	assert.Equal(t, "", key)

	for _, bad := range []string{"/", "/../etc/passwd", "/bucket/../../secrets", "/bucket/a//b", "/bucket/doc.json.tmp"} {
		_, _, ok := bucketKey(bad)
		assert.False(t, ok, bad)
	}
}
