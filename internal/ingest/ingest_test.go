package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"nodes": [
		{"id": "fn:a", "labels": ["Function"], "properties": {"name": "a"}},
		{"id": "file:x", "labels": ["File"], "properties": {"filePath": "src/x.ts"}}
	],
	"relationships": [
		{"type": "calls", "startNode": "fn:a", "endNode": "fn:b"}
	]
}`

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o644))

	snap, digest, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Relationships, 1)
	assert.Len(t, digest, 64, "digest is hex sha256")
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	snap, digest, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 2)
	assert.NotEmpty(t, digest)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, _, err := New().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestFetchMalformedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [`), 0o644))

	_, _, err := New().Fetch(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestFetchEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [], "relationships": []}`), 0o644))

	_, _, err := New().Fetch(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no nodes")
}

func TestFetchDigestIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o644))

	fetcher := New()
	_, first, err := fetcher.Fetch(context.Background(), path)
	require.NoError(t, err)
	_, second, err := fetcher.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
