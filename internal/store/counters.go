package store

import (
	"database/sql"
	"time"
)

// RecordDownload increments a resource's download counter, appends the
// client's download history entry, and returns the new count.
func (s *Store) RecordDownload(clientID, resourceID string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO resource_downloads (resource_id, count) VALUES (?, 1)
		 ON CONFLICT(resource_id) DO UPDATE SET count = count + 1`,
		resourceID,
	)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(
		`INSERT INTO download_history (client_id, resource_id, downloaded_at) VALUES (?, ?, ?)`,
		clientID, resourceID, time.Now(),
	)
	if err != nil {
		return 0, err
	}

	var count int
	if err := tx.QueryRow(
		`SELECT count FROM resource_downloads WHERE resource_id = ?`, resourceID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// DownloadCount returns the download counter for a resource (0 if never downloaded).
func (s *Store) DownloadCount(resourceID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT count FROM resource_downloads WHERE resource_id = ?`, resourceID,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// HasDownloaded reports whether a client has downloaded a resource before.
// Premium resources skip the email gate on repeat downloads.
func (s *Store) HasDownloaded(clientID, resourceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM download_history WHERE client_id = ? AND resource_id = ?)`,
		clientID, resourceID,
	).Scan(&exists)
	return exists, err
}

// RecordProjectView increments a project's view counter and returns the new count.
func (s *Store) RecordProjectView(projectID string) (int, error) {
	_, err := s.db.Exec(
		`INSERT INTO project_views (project_id, count) VALUES (?, 1)
		 ON CONFLICT(project_id) DO UPDATE SET count = count + 1`,
		projectID,
	)
	if err != nil {
		return 0, err
	}
	var count int
	err = s.db.QueryRow(`SELECT count FROM project_views WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// ToggleFavorite flips a client's favorite flag on a project and reports the
// new state.
func (s *Store) ToggleFavorite(clientID, projectID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM project_favorites WHERE client_id = ? AND project_id = ?)`,
		clientID, projectID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		_, err = s.db.Exec(
			`DELETE FROM project_favorites WHERE client_id = ? AND project_id = ?`,
			clientID, projectID,
		)
		return false, err
	}
	_, err = s.db.Exec(
		`INSERT INTO project_favorites (client_id, project_id) VALUES (?, ?)`,
		clientID, projectID,
	)
	return true, err
}

// ListFavorites returns the project IDs a client has favorited.
func (s *Store) ListFavorites(clientID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT project_id FROM project_favorites WHERE client_id = ? ORDER BY project_id`, clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
