package registry

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

func newTestRegistry(credits int, delay time.Duration) *Registry {
	return New(credits, delay, zerolog.New(io.Discard))
}

func waitForStatus(t *testing.T, r *Registry, id string, want domain.JobStatus) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := r.Status(id)
		if err != nil {
			t.Fatalf("status %s: %v", id, err)
		}
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return Snapshot{}
}

func TestEnqueueCompletesAfterDelay(t *testing.T) {
	r := newTestRegistry(3, 20*time.Millisecond)

	id, err := r.Enqueue("sunset")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	snap, err := r.Status(id)
	if err != nil {
		t.Fatalf("status right after enqueue: %v", err)
	}
	if snap.Status != domain.JobStatusProcessing {
		t.Fatalf("expected processing, got %s", snap.Status)
	}

	snap = waitForStatus(t, r, id, domain.JobStatusCompleted)
	if len(snap.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(snap.Images))
	}
	for i, img := range snap.Images {
		if img.Label != "sunset" {
			t.Fatalf("image %d label: got %q, want %q", i, img.Label, "sunset")
		}
		if img.Full.URL == "" || img.Thumbnail.URL == "" {
			t.Fatalf("image %d missing urls: %+v", i, img)
		}
	}
	if snap.Credits != 2 {
		t.Fatalf("expected 2 credits after completion, got %d", snap.Credits)
	}
	if got := r.Credits(); got != 2 {
		t.Fatalf("balance: got %d, want 2", got)
	}
}

func TestCancelPendingJobPreventsCompletion(t *testing.T) {
	r := newTestRegistry(5, 50*time.Millisecond)

	id, err := r.Enqueue("city at night")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := r.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Give the (stopped) timer a chance to have fired if cancellation
	// were broken.
	time.Sleep(120 * time.Millisecond)

	snap, err := r.Status(id)
	if err != nil {
		t.Fatalf("status after cancel: %v", err)
	}
	if snap.Status != domain.JobStatusCancelled {
		t.Fatalf("expected cancelled, got %s", snap.Status)
	}
	if got := r.Credits(); got != 5 {
		t.Fatalf("credits changed on cancel: got %d, want 5", got)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	r := newTestRegistry(5, 10*time.Millisecond)

	id, err := r.Enqueue("logo")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := r.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := r.Cancel(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second cancel: got %v, want ErrNotFound", err)
	}
}

func TestCancelCompletedJobFails(t *testing.T) {
	r := newTestRegistry(5, 5*time.Millisecond)

	id, err := r.Enqueue("poster")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitForStatus(t, r, id, domain.JobStatusCompleted)

	if err := r.Cancel(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cancel completed job: got %v, want ErrNotFound", err)
	}
}

func TestEnqueueValidation(t *testing.T) {
	r := newTestRegistry(5, time.Minute)

	if _, err := r.Enqueue(""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty prompt: got %v, want ErrInvalidInput", err)
	}
}

func TestEnqueueWithoutCredits(t *testing.T) {
	r := newTestRegistry(0, time.Minute)

	if _, err := r.Enqueue("banner"); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("zero credits: got %v, want ErrInsufficientCredits", err)
	}
	if _, err := r.Status("anything"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no job should exist after rejected enqueue")
	}
}

func TestPurchaseAddsBundle(t *testing.T) {
	r := newTestRegistry(0, time.Minute)

	if got := r.Purchase(); got != 10 {
		t.Fatalf("first purchase: got %d, want 10", got)
	}
	if got := r.Purchase(); got != 20 {
		t.Fatalf("second purchase: got %d, want 20", got)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	r := newTestRegistry(5, time.Minute)

	if _, err := r.Status("b3b6d9f0-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := r.Status(""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty id: got %v, want ErrInvalidInput", err)
	}
}
