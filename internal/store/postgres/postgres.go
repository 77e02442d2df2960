// Package postgres implements contact.Store backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/springlegal/website/backend/internal/model/contact"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements contact.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements contact.Store.
var _ contact.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const insertContact = `
	INSERT INTO contacts (name, email, phone, subject, message)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, name, email, phone, subject, message, created_at`

// Insert appends a row and returns it as stored. id and created_at come from
// the database defaults.
func (s *PostgresStore) Insert(ctx context.Context, sub contact.Submission) (contact.Submission, error) {
	row := s.db.QueryRowContext(ctx, insertContact,
		sub.Name,
		sub.Email,
		nullablePhone(sub.Phone),
		sub.Subject,
		sub.Message,
	)

	var (
		stored  contact.Submission
		phone   sql.NullString
		subject sql.NullString
	)
	if err := row.Scan(&stored.ID, &stored.Name, &stored.Email, &phone, &subject, &stored.Message, &stored.CreatedAt); err != nil {
		return contact.Submission{}, fmt.Errorf("insert contact: %w", err)
	}
	if phone.Valid {
		stored.Phone = &phone.String
	}
	stored.Subject = subject.String
	return stored, nil
}

// nullablePhone keeps an absent phone as NULL and a supplied one verbatim.
func nullablePhone(phone *string) any {
	if phone == nil {
		return nil
	}
	return *phone
}
