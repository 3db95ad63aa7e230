package store

import (
	"fmt"
	"time"

	"github.com/gamedev-academy/academy/internal/model"
)

// ExportAll gathers every persisted log into one export document.
func (s *Store) ExportAll() (*model.Export, error) {
	enrollments, err := s.ListSubmissions(model.FlowEnrollment)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	contacts, err := s.ListSubmissions(model.FlowContact)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	signups, err := s.ListSubmissions(model.FlowResourceEmail)
	if err != nil {
		return nil, fmt.Errorf("list email signups: %w", err)
	}
	quizRuns, err := s.ListQuizHistory("")
	if err != nil {
		return nil, fmt.Errorf("list quiz history: %w", err)
	}

	return &model.Export{
		ExportedAt:      time.Now().UTC(),
		Enrollments:     enrollments,
		ContactMessages: contacts,
		EmailSignups:    signups,
		QuizRuns:        quizRuns,
	}, nil
}
