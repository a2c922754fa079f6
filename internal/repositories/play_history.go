package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// PlayHistoryRepository implements [models.Repository] for [models.PlayRecord].
//
// Records are appended as tracks start playing and listed newest first.
type PlayHistoryRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PlayRecord] = (*PlayHistoryRepository)(nil)

// NewPlayHistoryRepository creates a new PlayHistoryRepository with the given database connection
func NewPlayHistoryRepository(db *sql.DB) *PlayHistoryRepository {
	return &PlayHistoryRepository{db: db}
}

// Create inserts a new [models.PlayRecord] with a generated ID
func (r *PlayHistoryRepository) Create(record *models.PlayRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO play_history (id, track_id, track_uri, name, artists, album, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		record.TrackID(),
		record.TrackURI(),
		record.Name(),
		record.Artists(),
		record.Album(),
		record.PlayedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play record: %w", err)
	}

	record.SetID(id)
	return nil
}

// Record stores a play of track at the current time.
func (r *PlayHistoryRepository) Record(track models.Track) (*models.PlayRecord, error) {
	record := models.NewPlayRecord(track)
	if err := r.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get retrieves a play record by ID
func (r *PlayHistoryRepository) Get(id string) (*models.PlayRecord, error) {
	query := `
		SELECT id, track_id, track_uri, name, artists, album, played_at
		FROM play_history
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Last retrieves the most recent play record
func (r *PlayHistoryRepository) Last() (*models.PlayRecord, error) {
	query := `
		SELECT id, track_id, track_uri, name, artists, album, played_at
		FROM play_history
		ORDER BY played_at DESC, rowid DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query))
}

// List retrieves up to limit records, newest first. A non-positive limit returns every record.
func (r *PlayHistoryRepository) List(limit int) ([]*models.PlayRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, track_id, track_uri, name, artists, album, played_at
		FROM play_history
		ORDER BY played_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query play history: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating play history: %w", err)
	}

	return records, nil
}

// Delete removes a play record by ID
func (r *PlayHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM play_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete play record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// Clear removes every play record and returns how many were deleted
func (r *PlayHistoryRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM play_history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear play history: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PlayHistoryRepository) scanOne(row *sql.Row) (*models.PlayRecord, error) {
	record, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return record, err
}

func (r *PlayHistoryRepository) scan(s scanner) (*models.PlayRecord, error) {
	var (
		id, trackID, trackURI, name, artists, album string
		playedAt                                    time.Time
	)

	if err := s.Scan(&id, &trackID, &trackURI, &name, &artists, &album, &playedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan play record: %w", err)
	}

	return models.RestorePlayRecord(id, trackID, trackURI, name, artists, album, playedAt), nil
}
