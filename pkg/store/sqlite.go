package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/period"
	"github.com/mcclellann/fredMortgage/pkg/pmt"

	_ "github.com/mattn/go-sqlite3"
)

const mortgageColumns = `id, name, variant, period, loan_amount, interest_rate, term_months, start_date, created_at, updated_at`

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	slog.Info("database connection established and schema initialized", "dsn", dataSourceName)
	return s, nil
}

// initSchema creates the tables if they don't already exist.
// Amounts are TEXT so no decimal precision is lost; due dates are TEXT in
// period.DateLayout so they compare and sort lexically.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS mortgages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		variant TEXT NOT NULL,
		period TEXT NOT NULL,
		loan_amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		term_months INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS extra_payments (
		mortgage_id TEXT NOT NULL,
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (mortgage_id, due_date),
		FOREIGN KEY(mortgage_id) REFERENCES mortgages(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateMortgage inserts a new mortgage into the database.
func (s *SQLiteStore) CreateMortgage(m *models.Mortgage) error {
	_, err := s.db.Exec(
		`INSERT INTO mortgages (`+mortgageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Name, string(m.Variant), m.Period.String(), m.LoanAmount, m.InterestRate, m.TermMonths, m.StartDate.String(), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create mortgage: %w", err)
	}
	return nil
}

// GetMortgage retrieves a mortgage by its ID.
func (s *SQLiteStore) GetMortgage(id uuid.UUID) (*models.Mortgage, error) {
	row := s.db.QueryRow(`SELECT `+mortgageColumns+` FROM mortgages WHERE id = ?`, id.String())
	m, err := scanMortgage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mortgage: %w", err)
	}
	return m, nil
}

// UpdateMortgage updates an existing mortgage. CreatedAt is never changed.
func (s *SQLiteStore) UpdateMortgage(m *models.Mortgage) error {
	result, err := s.db.Exec(
		`UPDATE mortgages SET name = ?, variant = ?, period = ?, loan_amount = ?, interest_rate = ?, term_months = ?, start_date = ?, updated_at = ? WHERE id = ?`,
		m.Name, string(m.Variant), m.Period.String(), m.LoanAmount, m.InterestRate, m.TermMonths, m.StartDate.String(), m.UpdatedAt, m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update mortgage: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMortgage removes a mortgage and its extra payments within a transaction.
func (s *SQLiteStore) DeleteMortgage(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM extra_payments WHERE mortgage_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete associated extra payments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM mortgages WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete mortgage: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GetAllMortgages retrieves all mortgages, oldest first.
func (s *SQLiteStore) GetAllMortgages() ([]*models.Mortgage, error) {
	rows, err := s.db.Query(`SELECT ` + mortgageColumns + ` FROM mortgages ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all mortgages: %w", err)
	}
	defer rows.Close()

	var mortgages []*models.Mortgage
	for rows.Next() {
		m, err := scanMortgage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mortgage row: %w", err)
		}
		mortgages = append(mortgages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return mortgages, nil
}

// GetExtraPayments retrieves the extra payments of a mortgage by due date.
func (s *SQLiteStore) GetExtraPayments(mortgageID uuid.UUID) ([]*models.ExtraPayment, error) {
	if err := s.requireMortgage(s.db, mortgageID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT due_date, amount FROM extra_payments WHERE mortgage_id = ? ORDER BY due_date ASC`, mortgageID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get extra payments for mortgage %s: %w", mortgageID, err)
	}
	defer rows.Close()

	var payments []*models.ExtraPayment
	for rows.Next() {
		p := models.ExtraPayment{MortgageID: mortgageID}
		var due string
		if err := rows.Scan(&due, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan extra payment row: %w", err)
		}
		d, err := period.ParseDate(due)
		if err != nil {
			return nil, fmt.Errorf("stored due date: %w", err)
		}
		p.DueDate = models.NewDate(d)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for extra payments: %w", err)
	}
	return payments, nil
}

// ReplaceExtraPayments deletes the stored extra payments of a mortgage and
// inserts payments in one transaction.
func (s *SQLiteStore) ReplaceExtraPayments(mortgageID uuid.UUID, payments []*models.ExtraPayment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireMortgage(tx, mortgageID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM extra_payments WHERE mortgage_id = ?`, mortgageID.String()); err != nil {
		return fmt.Errorf("failed to clear extra payments: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO extra_payments (mortgage_id, due_date, amount) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare extra payment insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range payments {
		if _, err := stmt.Exec(mortgageID.String(), p.DueDate.String(), p.Amount); err != nil {
			return fmt.Errorf("failed to insert extra payment on %s: %w", p.DueDate, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *SQLiteStore) requireMortgage(q queryer, id uuid.UUID) error {
	var n int
	if err := q.QueryRow(`SELECT COUNT(1) FROM mortgages WHERE id = ?`, id.String()).Scan(&n); err != nil {
		return fmt.Errorf("failed to look up mortgage: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMortgage(row scanner) (*models.Mortgage, error) {
	var m models.Mortgage
	var id, variant, typ, start string
	if err := row.Scan(&id, &m.Name, &variant, &typ, &m.LoanAmount, &m.InterestRate, &m.TermMonths, &start, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("stored mortgage id %q: %w", id, err)
	}
	if m.Variant, err = pmt.ParseVariant(variant); err != nil {
		return nil, fmt.Errorf("stored variant: %w", err)
	}
	if m.Period, err = period.ParseType(typ); err != nil {
		return nil, fmt.Errorf("stored period: %w", err)
	}
	d, err := period.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("stored start date: %w", err)
	}
	m.StartDate = models.NewDate(d)
	return &m, nil
}
