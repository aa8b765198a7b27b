// Package uploads manages the pending-upload queue: locally selected PDFs
// that have not yet been sent to the backend.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"docdeck/internal/api"
)

// MaxUploadBytes is the per-file size ceiling enforced before anything goes
// over the wire.
const MaxUploadBytes = 10 << 20

const pdfMediaType = "application/pdf"

// Candidate is one locally selected file waiting to be uploaded. Identity is
// pointer identity: two candidates with the same name stay distinct entries.
type Candidate struct {
	Name      string
	Path      string
	Size      int64
	MediaType string
}

// NewCandidate stats the file and sniffs its media type. It does not read
// document content beyond the magic-number header.
func NewCandidate(path string) (*Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", filepath.Base(path))
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &Candidate{
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		MediaType: mime.String(),
	}, nil
}

// Uploader is the slice of the backend client the queue needs.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (api.UploadReceipt, error)
}

// Refresher re-fetches the document registry after a successful batch.
type Refresher interface {
	Refresh(ctx context.Context) ([]api.Document, error)
}

// UploadFailure identifies the candidate that stopped a batch.
type UploadFailure struct {
	Name string
	Err  error
}

func (f *UploadFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

func (f *UploadFailure) Unwrap() error {
	return f.Err
}

// BatchResult summarizes one Submit call: the success prefix, the failure
// that stopped the loop (nil when everything went through), and how many
// candidates are still pending afterwards.
type BatchResult struct {
	Uploaded   []api.UploadReceipt
	Failed     *UploadFailure
	Remaining  int
	RefreshErr error
}

// Config wires the queue's collaborators.
type Config struct {
	Uploader  Uploader
	Refresher Refresher
	// OnBatch is invoked after every finished submit, refresh included.
	OnBatch func(BatchResult)
}

// Queue holds the pending candidates. Submit runs inside a UI job goroutine
// while Add/Remove/Pending are called from the update loop, hence the mutex.
type Queue struct {
	cfg Config

	mu        sync.Mutex
	pending   []*Candidate
	uploading bool
}

func NewQueue(cfg Config) *Queue {
	return &Queue{cfg: cfg}
}

// Add validates the given paths and appends the accepted ones to the pending
// list in arrival order. Rejections are not silently dropped: they come back
// as one aggregated error alongside whatever was accepted. Duplicate names
// are allowed.
func (q *Queue) Add(paths ...string) ([]*Candidate, error) {
	var accepted []*Candidate
	var rejected []string

	for _, path := range paths {
		candidate, err := NewCandidate(path)
		if err != nil {
			rejected = append(rejected, err.Error())
			continue
		}
		if reason := validate(candidate); reason != "" {
			rejected = append(rejected, fmt.Sprintf("%s: %s", candidate.Name, reason))
			continue
		}
		accepted = append(accepted, candidate)
	}

	if len(accepted) > 0 {
		q.mu.Lock()
		q.pending = append(q.pending, accepted...)
		q.mu.Unlock()
	}

	if len(rejected) > 0 {
		return accepted, errors.New(strings.Join(rejected, "; "))
	}
	return accepted, nil
}

func validate(c *Candidate) string {
	if !strings.HasPrefix(c.MediaType, pdfMediaType) {
		return fmt.Sprintf("not a PDF (%s)", c.MediaType)
	}
	if c.Size > MaxUploadBytes {
		return fmt.Sprintf("exceeds the %d MiB limit", MaxUploadBytes>>20)
	}
	return ""
}

// Remove drops one candidate by identity. It is a no-op while a submit is
// running.
func (q *Queue) Remove(target *Candidate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.uploading {
		return
	}
	for i, c := range q.pending {
		if c == target {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending returns a copy of the current pending list.
func (q *Queue) Pending() []*Candidate {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Candidate, len(q.pending))
	copy(out, q.pending)
	return out
}

// Uploading reports whether a submit is in flight.
func (q *Queue) Uploading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.uploading
}

// Submit uploads the pending batch sequentially and stops at the first
// failure; candidates after the failing one are never attempted. It returns
// nil when the queue is empty or a submit is already running. On completion
// exactly the successful candidates are removed from the pending list, the
// registry is refreshed when anything succeeded, and OnBatch is notified.
//
// One request is in flight at a time on purpose: it bounds backend load and
// keeps the failing filename unambiguous when errors depend on file content.
func (q *Queue) Submit(ctx context.Context) *BatchResult {
	q.mu.Lock()
	if q.uploading || len(q.pending) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.uploading = true
	batch := make([]*Candidate, len(q.pending))
	copy(batch, q.pending)
	q.mu.Unlock()

	receipts, succeeded, failure := uploadBatch(ctx, q.cfg.Uploader, batch)

	q.mu.Lock()
	q.pending = withoutCandidates(q.pending, succeeded)
	q.uploading = false
	remaining := len(q.pending)
	q.mu.Unlock()

	result := BatchResult{Uploaded: receipts, Failed: failure, Remaining: remaining}
	if len(receipts) > 0 && q.cfg.Refresher != nil {
		if _, err := q.cfg.Refresher.Refresh(ctx); err != nil {
			result.RefreshErr = err
		}
	}
	if q.cfg.OnBatch != nil {
		q.cfg.OnBatch(result)
	}
	return &result
}

// uploadBatch is the short-circuit fold over the batch: it returns the
// receipts and candidates of the success prefix plus the first failure, if
// any. The remainder of the batch is untouched.
func uploadBatch(ctx context.Context, up Uploader, batch []*Candidate) ([]api.UploadReceipt, []*Candidate, *UploadFailure) {
	var receipts []api.UploadReceipt
	var succeeded []*Candidate
	for _, candidate := range batch {
		receipt, err := uploadOne(ctx, up, candidate)
		if err != nil {
			return receipts, succeeded, &UploadFailure{Name: candidate.Name, Err: err}
		}
		receipts = append(receipts, receipt)
		succeeded = append(succeeded, candidate)
	}
	return receipts, succeeded, nil
}

func uploadOne(ctx context.Context, up Uploader, c *Candidate) (api.UploadReceipt, error) {
	file, err := os.Open(c.Path)
	if err != nil {
		return api.UploadReceipt{}, err
	}
	defer file.Close()
	return up.Upload(ctx, c.Name, file)
}

func withoutCandidates(pending, done []*Candidate) []*Candidate {
	if len(done) == 0 {
		return pending
	}
	drop := make(map[*Candidate]struct{}, len(done))
	for _, c := range done {
		drop[c] = struct{}{}
	}
	kept := pending[:0]
	for _, c := range pending {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}
