package services

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteService stores transactions in a local SQLite database.
type SQLiteService struct {
	db *sql.DB
}

// NewSQLiteService opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("sqlite service initialized successfully", "db_path", dbPath)
	return &SQLiteService{db: db}, nil
}

func runMigrations(dbPath string) error {
	// Separate connection so migrate can close it without affecting the main pool.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectColumns = `SELECT id, owner_id, type, amount, category, description, date, created_at FROM transactions`

// ListByOwner returns the owner's transactions in insertion order.
func (s *SQLiteService) ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// Get returns the transaction with the given id.
func (s *SQLiteService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores t under a new id.
func (s *SQLiteService) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, type, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Type), t.Amount.String(), string(t.Category), t.Description, t.Date,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

// UpdateOwned rewrites the mutable columns of t when it belongs to ownerID.
func (s *SQLiteService) UpdateOwned(ctx context.Context, ownerID string, t models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND owner_id = ?`,
		string(t.Type), t.Amount.String(), string(t.Category), t.Description, t.Date,
		t.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res)
}

// DeleteOwned removes the transaction when it belongs to ownerID.
func (s *SQLiteService) DeleteOwned(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		t         models.Transaction
		typ       string
		amount    string
		category  string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &typ, &amount, &category, &t.Description, &t.Date, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return t, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Type = models.TransactionType(typ)
	t.Category = models.Category(category)
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return t, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
