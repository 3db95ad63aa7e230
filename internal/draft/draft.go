// Package draft persists resumable snapshots of in-progress flow input.
// Each flow writes under its own namespace, so enrollment, contact, and quiz
// drafts never collide.
package draft

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// SchemaVersion tags persisted records. A record written under a different
// version is treated as absent rather than replayed into new rule sets.
const SchemaVersion = 1

// Record is the durable snapshot of one flow's in-progress state.
type Record struct {
	Version   int            `json:"version"`
	FormData  map[string]any `json:"form_data"`
	FlowStep  int            `json:"flow_step,omitempty"`
	Timestamp int64          `json:"timestamp"` // epoch milliseconds
}

// NewRecord builds a record stamped with the current schema version and time.
func NewRecord(formData map[string]any, flowStep int) Record {
	return Record{
		Version:   SchemaVersion,
		FormData:  formData,
		FlowStep:  flowStep,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Store saves, loads, and clears drafts keyed by namespace.
//
// Load returns (nil, nil) when no usable draft exists: a missing key, a
// version mismatch, and corrupt payloads all read as absence. Corruption is
// logged, never propagated; a bad draft must not take down its flow.
type Store interface {
	Save(ctx context.Context, namespace string, rec Record) error
	Load(ctx context.Context, namespace string) (*Record, error)
	Clear(ctx context.Context, namespace string) error
}

// Decode parses a stored payload, applying the fail-open policy shared by
// all Store implementations.
func Decode(namespace string, data []byte) *Record {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("discarding corrupt draft", "namespace", namespace, "error", err)
		return nil
	}
	if rec.Version != SchemaVersion {
		slog.Info("discarding draft with stale schema version",
			"namespace", namespace, "version", rec.Version)
		return nil
	}
	return &rec
}

// Memory is an in-process Store used in tests and as the default when no
// durable backend is configured. Records round-trip through JSON so the
// same decode policy applies as for durable backends.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, namespace string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[namespace] = b
	return nil
}

func (m *Memory) Load(_ context.Context, namespace string) (*Record, error) {
	m.mu.Lock()
	b, ok := m.data[namespace]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return Decode(namespace, b), nil
}

func (m *Memory) Clear(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

// Corrupt overwrites a namespace with a non-JSON payload. Test hook.
func (m *Memory) Corrupt(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[namespace] = []byte("{not json")
}
