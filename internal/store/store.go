package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gamedev-academy/academy/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		flow TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'received',
		submitted_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_results (
		namespace TEXT PRIMARY KEY,
		quiz_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		namespace TEXT NOT NULL,
		quiz_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS drafts (
		namespace TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resource_downloads (
		resource_id TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS download_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		downloaded_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_views (
		project_id TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS project_favorites (
		client_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		PRIMARY KEY (client_id, project_id)
	);

	CREATE TABLE IF NOT EXISTS app_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendSubmission appends a record to the submission log. The log is
// append-only: entries are never updated or pruned.
func (s *Store) AppendSubmission(rec model.SubmissionRecord) error {
	payload, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("marshal submission values: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, flow, payload, status, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Flow, string(payload), rec.Status, rec.SubmittedAt,
	)
	return err
}

// ListSubmissions returns all submissions for a flow, newest first.
// An empty flow returns the whole log.
func (s *Store) ListSubmissions(flow model.Flow) ([]model.SubmissionRecord, error) {
	query := `SELECT id, flow, payload, status, submitted_at FROM submissions`
	var args []any
	if flow != "" {
		query += ` WHERE flow = ?`
		args = append(args, flow)
	}
	query += ` ORDER BY submitted_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.SubmissionRecord
	for rows.Next() {
		var rec model.SubmissionRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Flow, &payload, &rec.Status, &rec.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Values); err != nil {
			return nil, fmt.Errorf("unmarshal submission %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SubmissionCount returns the number of entries in the log for a flow.
func (s *Store) SubmissionCount(flow model.Flow) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions WHERE flow = ?`, flow).Scan(&count)
	return count, err
}

// SaveQuizResult upserts the latest result for a quiz namespace and appends
// the run to the history log.
func (s *Store) SaveQuizResult(namespace string, result model.QuizResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal quiz result: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO quiz_results (namespace, quiz_type, payload, completed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET quiz_type = ?, payload = ?, completed_at = ?`,
		namespace, result.QuizType, string(payload), result.CompletedAt,
		result.QuizType, string(payload), result.CompletedAt,
	)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO quiz_history (namespace, quiz_type, payload, completed_at) VALUES (?, ?, ?, ?)`,
		namespace, result.QuizType, string(payload), result.CompletedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetQuizResult returns the latest result for a namespace, or nil.
func (s *Store) GetQuizResult(namespace string) (*model.QuizResult, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM quiz_results WHERE namespace = ?`, namespace,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.QuizResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshal quiz result %s: %w", namespace, err)
	}
	return &result, nil
}

// ListQuizHistory returns all completed runs under a namespace prefix
// (one client), newest first.
func (s *Store) ListQuizHistory(namespacePrefix string) ([]model.QuizResult, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM quiz_history WHERE namespace LIKE ? ORDER BY completed_at DESC, id DESC`,
		namespacePrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.QuizResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result model.QuizResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("unmarshal quiz history entry: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// QuizHistoryCount returns the number of history entries under a namespace prefix.
func (s *Store) QuizHistoryCount(namespacePrefix string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM quiz_history WHERE namespace LIKE ?`, namespacePrefix+"%",
	).Scan(&count)
	return count, err
}
