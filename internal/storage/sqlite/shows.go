package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// ShowStorage handles storage of show records. A show is written as a
// single JSON payload per row; the repository is the source of truth at
// runtime and writes through on every mutation.
type ShowStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewShowStorage creates a new SQLite show storage
func NewShowStorage(db *sql.DB, log *logger.Logger) *ShowStorage {
	storage := &ShowStorage{
		db:     db,
		logger: log.Named("sqlite-shows"),
	}

	// Initialize database
	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize show storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *ShowStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS shows (
			id INTEGER PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create shows table: %w", err)
	}

	return nil
}

// SaveShow inserts or replaces the full show payload
func (s *ShowStorage) SaveShow(record *show.Show) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal show %d: %w", record.ID, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO shows (id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		record.ID,
		string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save show %d: %w", record.ID, err)
	}

	return nil
}

// DeleteShow removes a show record
func (s *ShowStorage) DeleteShow(id int) error {
	_, err := s.db.Exec(`DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete show %d: %w", id, err)
	}

	return nil
}

// LoadShows returns all stored shows ordered by ID
func (s *ShowStorage) LoadShows() ([]*show.Show, error) {
	rows, err := s.db.Query(`SELECT id, payload FROM shows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []*show.Show
	for rows.Next() {
		var id int
		var payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}

		var record show.Show
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			// A corrupt row should not take the whole application down
			s.logger.Error("Skipping undecodable show payload",
				logger.Int("id", id),
				logger.Error(err))
			continue
		}
		record.ID = id

		shows = append(shows, &record)
	}

	return shows, rows.Err()
}
