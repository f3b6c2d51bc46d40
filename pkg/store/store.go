// Package store persists routing run records.
//
// The pipeline writes one [Record] per executed job. [MongoStore] keeps them in
// a MongoDB collection so runs can be compared across revisions of a macro;
// [Memory] is the in-process implementation used by tests and when no
// database is configured.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/layout"
)

// Record is one stored run.
type Record struct {
	RunID        string         `json:"run_id" bson:"_id"`
	JobName      string         `json:"job_name,omitempty" bson:"job_name,omitempty"`
	JobHash      string         `json:"job_hash" bson:"job_hash"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	Layout       layout.Export  `json:"layout" bson:"layout"`
	Unclassified []string       `json:"unclassified,omitempty" bson:"unclassified,omitempty"`
	Stats        map[string]int `json:"stats,omitempty" bson:"stats,omitempty"`
}

// Store saves and loads run records.
type Store interface {
	// Save inserts or replaces the record with r.RunID.
	Save(ctx context.Context, r Record) error
	// Load returns the record with runID, or an ErrCodeNotFound error.
	Load(ctx context.Context, runID string) (Record, error)
	// Latest returns the newest record for a job hash, or an ErrCodeNotFound error.
	Latest(ctx context.Context, jobHash string) (Record, error)
	// Close releases the backend.
	Close(ctx context.Context) error
}

func validate(r Record) error {
	if r.RunID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record has no run id")
	}
	if r.JobHash == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record %s has no job hash", r.RunID)
	}
	return nil
}

// Memory is a Store backed by a map. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, r Record) error {
	if err := validate(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.RunID] = r
	return nil
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, runID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[runID]
	if !ok {
		return Record{}, errors.New(errors.ErrCodeNotFound, "run %s not found", runID)
	}
	return r, nil
}

// Latest implements Store.
func (m *Memory) Latest(_ context.Context, jobHash string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found []Record
	for _, r := range m.records {
		if r.JobHash == jobHash {
			found = append(found, r)
		}
	}
	if len(found) == 0 {
		return Record{}, errors.New(errors.ErrCodeNotFound, "no run for job %s", jobHash)
	}
	return slices.MaxFunc(found, func(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) }), nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close implements Store.
func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
