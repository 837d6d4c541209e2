package resumesync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/cvmaker/internal/store"
	"github.com/jonathan/cvmaker/internal/types"
)

// Phase is the lifecycle state of a session's first load.
type Phase string

// Hydration phases.
const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// LoadFailedMessage is shown in the preview when the resume list cannot be fetched.
const LoadFailedMessage = "Failed to load resume data. Please refresh the page."

// Status describes what the preview should show for a session.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Hydrator performs the one-time initialization of a store from the user's newest
// persisted resume. Once the first successful list has been applied, later lists
// never overwrite local edits.
type Hydrator struct {
	backend Backend
	store   *store.Store

	mu       sync.Mutex
	hydrated bool
	status   Status
	records  []types.ResumeRecord
	loadErr  error
}

// NewHydrator creates a hydrator for one session's store.
func NewHydrator(backend Backend, s *store.Store) *Hydrator {
	return &Hydrator{
		backend: backend,
		store:   s,
		status:  Status{Phase: PhaseLoading},
	}
}

// Hydrate fetches the user's resumes. On the first successful fetch the newest record
// is loaded into the store along with its template; with no records the store is left
// as it is. A record whose data cannot be decoded leaves the store untouched and is
// returned as a *DeserializeError, but still counts as hydrated.
//
// A failed fetch sets the error phase and leaves the guard unset so a later call can retry.
func (h *Hydrator) Hydrate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.backend.List(ctx)
	if err != nil {
		log.Printf("[SYNC] failed to list resumes: %v", err)
		if !h.hydrated {
			h.status = Status{Phase: PhaseError, Message: LoadFailedMessage}
		}
		return fmt.Errorf("hydration failed: %w", err)
	}
	h.records = records

	if h.hydrated {
		return nil
	}
	h.hydrated = true
	h.status = Status{Phase: PhaseReady}

	if len(records) == 0 {
		return nil
	}

	latest := newestRecord(records)
	data, err := types.Deserialize(latest.Data)
	if err != nil {
		h.loadErr = &DeserializeError{RecordID: latest.ID, Cause: err}
		log.Printf("[SYNC] %v", h.loadErr)
		return h.loadErr
	}

	h.store.Load(data)
	h.store.SetTemplate(latest.Template())
	log.Printf("[SYNC] hydrated store from resume %d (template %s)", latest.ID, latest.Template())
	return nil
}

// Hydrated reports whether the one-shot initialization has happened.
func (h *Hydrator) Hydrated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hydrated
}

// Status returns the current phase for the preview.
func (h *Hydrator) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Records returns the result of the most recent successful list.
func (h *Hydrator) Records() []types.ResumeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.ResumeRecord(nil), h.records...)
}

// LoadError returns the deserialization failure of the first load, if any.
func (h *Hydrator) LoadError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadErr
}

// Save serializes the store and upserts it with the active template.
func (h *Hydrator) Save(ctx context.Context) (*types.ResumeRecord, error) {
	snap := h.store.Snapshot()
	data, err := types.Serialize(snap.Data)
	if err != nil {
		return nil, err
	}
	record, err := h.backend.Upsert(ctx, string(snap.Template), data)
	if err != nil {
		return nil, err
	}
	log.Printf("[SYNC] saved resume %d", record.ID)
	return record, nil
}

// LoadRecord explicitly replaces the store with a specific persisted resume. Unlike
// Hydrate it always applies, since it is a direct user action.
func (h *Hydrator) LoadRecord(ctx context.Context, id int64) error {
	record, err := h.backend.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := types.Deserialize(record.Data)
	if err != nil {
		return &DeserializeError{RecordID: record.ID, Cause: err}
	}

	h.mu.Lock()
	h.hydrated = true
	h.status = Status{Phase: PhaseReady}
	h.mu.Unlock()

	h.store.Load(data)
	h.store.SetTemplate(record.Template())
	return nil
}

// newestRecord returns the most recently created record. Records with equal
// creation times keep the backend's order.
func newestRecord(records []types.ResumeRecord) types.ResumeRecord {
	latest := records[0]
	for _, r := range records[1:] {
		if r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest
}

// IsDeserializeError reports whether err is a hydration deserialization failure.
func IsDeserializeError(err error) bool {
	var de *DeserializeError
	return errors.As(err, &de)
}
