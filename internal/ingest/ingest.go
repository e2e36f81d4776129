// Package ingest fetches raw graph snapshots from local files or HTTP
// endpoints so they can be archived ahead of querying.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"codeatlas/internal/graph"
	"codeatlas/util"
)

// maxSnapshotBytes bounds how much snapshot payload is read from a
// remote endpoint.
const maxSnapshotBytes = 256 << 20

// Fetcher retrieves snapshot payloads and decodes them.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a bounded-timeout HTTP client.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Fetch reads a snapshot from source, which is either an http(s) URL or
// a local file path. It returns the decoded snapshot and the hex digest
// of the raw payload, usable as a default idempotency key.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*graph.Snapshot, string, error) {
	var (
		payload []byte
		err     error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		payload, err = f.fetchHTTP(ctx, source)
	} else {
		payload, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot %s: %w", source, err)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, "", fmt.Errorf("decode snapshot %s: %w", source, err)
	}
	if len(snap.Nodes) == 0 {
		return nil, "", fmt.Errorf("snapshot %s contains no nodes", source)
	}

	return &snap, util.Digest(payload), nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return nil, err
	}
	if len(payload) > maxSnapshotBytes {
		return nil, fmt.Errorf("snapshot exceeds %d bytes", maxSnapshotBytes)
	}
	return payload, nil
}
