package handlers

import (
	"net/http"

	"server/internal/domain"
)

type queueResponse struct {
	JobID string `json:"jobId"`
}

type statusResponse struct {
	Status  domain.JobStatus        `json:"status"`
	Images  []domain.GeneratedImage `json:"images,omitempty"`
	Credits *int                    `json:"credits,omitempty"`
}

// QueueImageGeneration accepts a prompt and registers a simulated
// generation job. The job id comes back immediately; the result appears
// after the configured delay.
func (a *App) QueueImageGeneration(w http.ResponseWriter, r *http.Request) {
	jobID, err := a.Registry.Enqueue(r.URL.Query().Get("prompt"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, queueResponse{JobID: jobID})
}

// JobStatus reports where a job is in its lifecycle. Completed jobs carry
// the produced images and the post-debit credit balance.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Registry.Status(r.URL.Query().Get("jobId"))
	if err != nil {
		a.fail(w, err)
		return
	}
	resp := statusResponse{Status: snap.Status}
	if snap.Status == domain.JobStatusCompleted {
		resp.Images = snap.Images
		credits := snap.Credits
		resp.Credits = &credits
	}
	a.json(w, http.StatusOK, resp)
}

// JobCancel aborts a job that is still pending.
func (a *App) JobCancel(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if err := a.Registry.Cancel(jobID); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "job " + jobID + " cancelled"})
}
