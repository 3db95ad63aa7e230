package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gamedev-academy/academy/internal/draft"
)

// SaveDraft upserts the payload for a namespace.
func (s *Store) SaveDraft(namespace string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO drafts (namespace, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET payload = ?, updated_at = ?`,
		namespace, string(payload), time.Now(), string(payload), time.Now(),
	)
	return err
}

// LoadDraft returns the raw payload for a namespace, or nil if absent.
func (s *Store) LoadDraft(namespace string) ([]byte, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM drafts WHERE namespace = ?`, namespace).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// ClearDraft removes the draft for a namespace.
func (s *Store) ClearDraft(namespace string) error {
	_, err := s.db.Exec(`DELETE FROM drafts WHERE namespace = ?`, namespace)
	return err
}

// Drafts returns a draft.Store view over the drafts table.
func (s *Store) Drafts() draft.Store {
	return draftAdapter{s: s}
}

type draftAdapter struct {
	s *Store
}

var _ draft.Store = draftAdapter{}

func (a draftAdapter) Save(_ context.Context, namespace string, rec draft.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return a.s.SaveDraft(namespace, b)
}

func (a draftAdapter) Load(_ context.Context, namespace string) (*draft.Record, error) {
	b, err := a.s.LoadDraft(namespace)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return draft.Decode(namespace, b), nil
}

func (a draftAdapter) Clear(_ context.Context, namespace string) error {
	return a.s.ClearDraft(namespace)
}
