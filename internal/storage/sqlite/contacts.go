package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// ContactStorage handles storage of production contacts
type ContactStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewContactStorage creates a new SQLite contact storage
func NewContactStorage(db *sql.DB, log *logger.Logger) *ContactStorage {
	storage := &ContactStorage{
		db:     db,
		logger: log.Named("sqlite-contacts"),
	}

	// Initialize database
	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize contact storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *ContactStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			show_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			name TEXT,
			company TEXT,
			phone TEXT,
			email TEXT,
			notes TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create contacts table: %w", err)
	}

	_, err = s.db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_contacts_show_id ON contacts(show_id)`)
	if err != nil {
		return fmt.Errorf("failed to create contact index: %w", err)
	}

	return nil
}

// StoreContact inserts a contact and returns its ID
func (s *ContactStorage) StoreContact(record *show.ContactPerson) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO contacts
		(show_id, role, name, company, phone, email, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ShowID,
		record.Role,
		record.Name,
		record.Company,
		record.Phone,
		record.Email,
		record.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// UpdateContact updates an existing contact of a show. It reports
// sql.ErrNoRows when the contact does not belong to the show.
func (s *ContactStorage) UpdateContact(record *show.ContactPerson) error {
	result, err := s.db.Exec(
		`UPDATE contacts
		SET role = ?, name = ?, company = ?, phone = ?, email = ?, notes = ?
		WHERE id = ? AND show_id = ?`,
		record.Role,
		record.Name,
		record.Company,
		record.Phone,
		record.Email,
		record.Notes,
		record.ID,
		record.ShowID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact %d: %w", record.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteContact removes a contact of a show
func (s *ContactStorage) DeleteContact(showID int, id int64) error {
	result, err := s.db.Exec(
		`DELETE FROM contacts WHERE id = ? AND show_id = ?`, id, showID)
	if err != nil {
		return fmt.Errorf("failed to delete contact %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GetContactsByShow returns all contacts of a show ordered by ID
func (s *ContactStorage) GetContactsByShow(showID int) ([]*show.ContactPerson, error) {
	rows, err := s.db.Query(
		`SELECT id, show_id, role, name, company, phone, email, notes
		FROM contacts
		WHERE show_id = ?
		ORDER BY id`,
		showID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	return s.scanContactRows(rows)
}

// DeleteContactsByShow removes all contacts of a show, used when the
// show itself is deleted
func (s *ContactStorage) DeleteContactsByShow(showID int) error {
	_, err := s.db.Exec(`DELETE FROM contacts WHERE show_id = ?`, showID)
	if err != nil {
		return fmt.Errorf("failed to delete contacts of show %d: %w", showID, err)
	}

	return nil
}

// scanContactRows scans database rows into ContactPerson structs
func (s *ContactStorage) scanContactRows(rows *sql.Rows) ([]*show.ContactPerson, error) {
	var records []*show.ContactPerson
	for rows.Next() {
		var record show.ContactPerson
		var name, company, phone, email, notes sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.ShowID,
			&record.Role,
			&name,
			&company,
			&phone,
			&email,
			&notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}

		record.Name = name.String
		record.Company = company.String
		record.Phone = phone.String
		record.Email = email.String
		record.Notes = notes.String

		records = append(records, &record)
	}

	return records, rows.Err()
}
