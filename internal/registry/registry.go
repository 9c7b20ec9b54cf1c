package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/obs"
)

// CreditBundleSize is how many credits one purchase adds.
const CreditBundleSize = 10

const imagesPerJob = 2

// Registry owns all queue and credit state for the process. It is
// constructed once in main and handed to the HTTP layer; nothing else
// mutates the collections.
//
// A job id lives in at most one of pending/completed/cancelled. Finished
// entries are never evicted, so both maps grow for the process lifetime.
type Registry struct {
	mu        sync.Mutex
	credits   int
	delay     time.Duration
	pending   map[string]*pendingJob
	completed map[string][]domain.GeneratedImage
	cancelled map[string]struct{}
	logger    infra.Logger
}

type pendingJob struct {
	prompt string
	timer  *time.Timer
}

// Snapshot is the externally visible state of one job.
type Snapshot struct {
	Status  domain.JobStatus
	Images  []domain.GeneratedImage
	Credits int
}

// New creates a registry seeded with initialCredits. Jobs complete delay
// after enqueue unless cancelled first.
func New(initialCredits int, delay time.Duration, logger infra.Logger) *Registry {
	return &Registry{
		credits:   initialCredits,
		delay:     delay,
		pending:   make(map[string]*pendingJob),
		completed: make(map[string][]domain.GeneratedImage),
		cancelled: make(map[string]struct{}),
		logger:    logger,
	}
}

// Credits returns the current balance.
func (r *Registry) Credits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.credits
}

// Purchase adds one credit bundle and returns the new balance.
func (r *Registry) Purchase() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credits += CreditBundleSize
	obs.CreditsPurchased.Add(CreditBundleSize)
	r.logger.Info().Int("credits", r.credits).Msg("credits purchased")
	return r.credits
}

// Enqueue registers a new image generation job and schedules its
// completion. It returns immediately with the job id.
//
// The balance check here is the only credit guard; the debit itself
// happens at completion time.
func (r *Registry) Enqueue(prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.credits <= 0 {
		return "", domain.ErrInsufficientCredits
	}

	id := uuid.NewString()
	job := &pendingJob{prompt: prompt}
	job.timer = time.AfterFunc(r.delay, func() { r.complete(id) })
	r.pending[id] = job

	obs.JobsQueued.Inc()
	r.logger.Debug().Str("job_id", id).Msg("job queued")
	return id, nil
}

// complete fires on the job's timer. Membership in pending decides the
// race with Cancel: whoever removes the entry first wins, the loser is a
// no-op.
func (r *Registry) complete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.pending[id]
	if !ok {
		return
	}
	delete(r.pending, id)
	r.completed[id] = synthesizeImages(id, job.prompt)
	r.credits--

	obs.JobsCompleted.Inc()
	r.logger.Info().Str("job_id", id).Int("credits", r.credits).Msg("job completed")
}

// Status reports the current state of a job.
func (r *Registry) Status(id string) (Snapshot, error) {
	if id == "" {
		return Snapshot{}, fmt.Errorf("job id is required: %w", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if images, ok := r.completed[id]; ok {
		return Snapshot{Status: domain.JobStatusCompleted, Images: images, Credits: r.credits}, nil
	}
	if _, ok := r.pending[id]; ok {
		return Snapshot{Status: domain.JobStatusProcessing}, nil
	}
	if _, ok := r.cancelled[id]; ok {
		return Snapshot{Status: domain.JobStatusCancelled}, nil
	}
	return Snapshot{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
}

// Cancel aborts a pending job. Jobs that already completed or were
// cancelled cannot be cancelled again.
func (r *Registry) Cancel(id string) error {
	if id == "" {
		return fmt.Errorf("job id is required: %w", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.pending[id]
	if !ok {
		return fmt.Errorf("job %s is not pending: %w", id, domain.ErrNotFound)
	}
	delete(r.pending, id)
	job.timer.Stop()
	r.cancelled[id] = struct{}{}

	obs.JobsCancelled.Inc()
	r.logger.Info().Str("job_id", id).Msg("job cancelled")
	return nil
}

func synthesizeImages(id, prompt string) []domain.GeneratedImage {
	images := make([]domain.GeneratedImage, 0, imagesPerJob)
	for i := 0; i < imagesPerJob; i++ {
		seed := fmt.Sprintf("%s-%d", id, i)
		images = append(images, domain.GeneratedImage{
			Full: domain.ImageFile{
				Width:  1024,
				Height: 768,
				URL:    fmt.Sprintf("https://picsum.photos/seed/%s/1024/768", seed),
			},
			Thumbnail: domain.ImageFile{
				Width:  256,
				Height: 192,
				URL:    fmt.Sprintf("https://picsum.photos/seed/%s/256/192", seed),
			},
			Label: prompt,
		})
	}
	return images
}
