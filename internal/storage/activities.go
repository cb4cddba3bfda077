package storage

import (
	"database/sql"
	"fmt"
)

const activityColumns = `id, name, url, COALESCE(preview_url, ''), COALESCE(description, ''),
	release_date, average_duration, focus`

func scanActivity(sc interface{ Scan(...any) error }) (*StudyActivity, error) {
	var a StudyActivity
	var release sql.NullString
	var duration sql.NullInt64
	var focus sql.NullInt64
	if err := sc.Scan(&a.ID, &a.Name, &a.URL, &a.PreviewURL, &a.Description, &release, &duration, &focus); err != nil {
		return nil, err
	}
	if release.Valid {
		a.ReleaseDate = &release.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		a.AverageDuration = &d
	}
	if focus.Valid {
		a.Focus = &focus.Int64
	}
	return &a, nil
}

func (s *SQLiteStore) ListActivities() ([]StudyActivity, error) {
	rows, err := s.db.Query("SELECT " + activityColumns + " FROM study_activities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []StudyActivity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// GetActivity returns the activity or nil if it does not exist.
func (s *SQLiteStore) GetActivity(id int64) (*StudyActivity, error) {
	a, err := scanActivity(s.db.QueryRow("SELECT "+activityColumns+" FROM study_activities WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// GetLaunchInfo returns what a client needs to launch the activity.
// It carries the same fields as the activity itself.
func (s *SQLiteStore) GetLaunchInfo(id int64) (*StudyActivity, error) {
	return s.GetActivity(id)
}

func (s *SQLiteStore) CreateActivity(a *StudyActivity) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO study_activities (name, url, preview_url, description, release_date, average_duration, focus)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.Name, a.URL, a.PreviewURL, a.Description, a.ReleaseDate, a.AverageDuration, a.Focus)
	if err != nil {
		return 0, fmt.Errorf("failed to create activity: %w", err)
	}
	return result.LastInsertId()
}
