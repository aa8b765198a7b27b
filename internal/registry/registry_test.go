package registry

import (
	"context"
	"errors"
	"testing"

	"docdeck/internal/api"
)

type fakeLister struct {
	docs []api.Document
	err  error
}

func (f *fakeLister) ListDocuments(ctx context.Context) ([]api.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func filenames(docs []api.Document) []string {
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Filename)
	}
	return names
}

func TestRefreshSortsNaturally(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []api.Document{
		{Filename: "doc10.pdf"},
		{Filename: "doc2.pdf"},
		{Filename: "doc1.pdf"},
	}}
	reg := New(lister)

	docs, err := reg.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	want := []string{"doc1.pdf", "doc2.pdf", "doc10.pdf"}
	got := filenames(docs)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []api.Document{
		{Filename: "kept.pdf"},
		{Filename: "removed.pdf"},
	}}
	reg := New(lister)
	if _, err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Backend-side deletion between refreshes must disappear from the cache.
	lister.docs = []api.Document{{Filename: "kept.pdf"}}
	if _, err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Filename != "kept.pdf" {
		t.Fatalf("stale record survived the refresh: %v", filenames(snap))
	}
}

func TestRefreshFailureLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []api.Document{{Filename: "a.pdf"}}}
	reg := New(lister)
	if _, err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	lister.err = errors.New("backend unreachable")
	if _, err := reg.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Filename != "a.pdf" {
		t.Fatalf("cache mutated on failed refresh: %v", filenames(snap))
	}
}

func TestSnapshotEmptyBeforeFirstRefresh(t *testing.T) {
	t.Parallel()

	reg := New(&fakeLister{})
	if snap := reg.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", filenames(snap))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []api.Document{{Filename: "a.pdf"}}}
	reg := New(lister)
	if _, err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	snap := reg.Snapshot()
	snap[0].Filename = "mutated.pdf"
	if reg.Snapshot()[0].Filename != "a.pdf" {
		t.Fatal("snapshot aliases the internal cache")
	}
}
