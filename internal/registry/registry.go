// Package registry mirrors the backend's list of ingested documents. The
// backend owns the authoritative copy; this cache is read-mostly and only ever
// replaced wholesale by Refresh, never patched in place.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"

	"docdeck/internal/api"
)

// Lister is the slice of the backend client the registry needs.
type Lister interface {
	ListDocuments(ctx context.Context) ([]api.Document, error)
}

// Registry caches the last successfully fetched document list. It is safe for
// use from UI jobs: Refresh runs off the update loop while Snapshot is read
// during rendering.
type Registry struct {
	lister Lister

	mu   sync.Mutex
	docs []api.Document
}

func New(lister Lister) *Registry {
	return &Registry{lister: lister}
}

// Refresh fetches the full registry and replaces the cache atomically with the
// sorted result. On error the cache keeps its previous contents; callers treat
// the failure as retryable.
func (r *Registry) Refresh(ctx context.Context) ([]api.Document, error) {
	docs, err := r.lister.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]api.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessFilename(sorted[i].Filename, sorted[j].Filename)
	})

	r.mu.Lock()
	r.docs = sorted
	r.mu.Unlock()

	return r.Snapshot(), nil
}

// Snapshot returns a copy of the last successful fetch, empty before the
// first one.
func (r *Registry) Snapshot() []api.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]api.Document, len(r.docs))
	copy(out, r.docs)
	return out
}

// lessFilename orders filenames the way a file browser would: numeric runs
// compare by value, so doc2.pdf sorts before doc10.pdf.
func lessFilename(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return a < b
	}
	return natural.Less(la, lb)
}
