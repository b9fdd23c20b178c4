// Package report records the per-item outcomes of batch runs.
package report

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnknownRun is returned when no outcome was recorded for a run.
var ErrUnknownRun = errors.New("unknown run")

// Outcome kinds. An empty kind means the image was saved.
const (
	KindSuccess   = ""
	KindStatus    = "status"
	KindTransport = "transport"
	KindWrite     = "write"
)

// Outcome is the record of one processed work item.
type Outcome struct {
	Item       string    `json:"item"`
	Path       string    `json:"path,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Bytes      int64     `json:"bytes,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Succeeded reports whether the item was saved.
func (o Outcome) Succeeded() bool {
	return o.Kind == KindSuccess
}

// Counts aggregates the outcomes of a run.
type Counts struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Total returns the number of recorded items.
func (c Counts) Total() int {
	return c.Succeeded + c.Failed
}

// Recorder stores outcomes as a run progresses.
type Recorder interface {
	Record(ctx context.Context, runID string, outcome Outcome) error
}

// MemoryStore is an in-process Recorder.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string][]Outcome
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string][]Outcome)}
}

// Record appends outcome to the run.
func (m *MemoryStore) Record(ctx context.Context, runID string, outcome Outcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runID] = append(m.runs[runID], outcome)
	return nil
}

// Outcomes returns the outcomes of a run in recording order.
func (m *MemoryStore) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	outcomes, ok := m.runs[runID]
	if !ok {
		return nil, ErrUnknownRun
	}
	return append([]Outcome(nil), outcomes...), nil
}

// Counts returns the success/failure counts of a run.
func (m *MemoryStore) Counts(ctx context.Context, runID string) (Counts, error) {
	outcomes, err := m.Outcomes(ctx, runID)
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, o := range outcomes {
		if o.Succeeded() {
			c.Succeeded++
		} else {
			c.Failed++
		}
	}
	return c, nil
}
