package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite table schemas
const (
	createAccountsTableSQL = `
	CREATE TABLE IF NOT EXISTS accounts (
		scope_id TEXT NOT NULL,
		holder_id TEXT NOT NULL,
		name TEXT NOT NULL,
		country TEXT,
		age INTEGER,
		birth TEXT,
		income INTEGER NOT NULL DEFAULT 0,
		rank TEXT,
		balance INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		frozen INTEGER NOT NULL DEFAULT 0,
		kind TEXT,
		faction TEXT,
		daily_spend TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope_id, holder_id)
	)`

	createTransactionsTableSQL = `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		scope_id TEXT NOT NULL,
		type TEXT NOT NULL,
		from_holder TEXT,
		to_holder TEXT,
		amount INTEGER NOT NULL,
		fee INTEGER NOT NULL DEFAULT 0,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createTransactionIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_transactions_scope ON transactions(scope_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_holder);
	CREATE INDEX IF NOT EXISTS idx_transactions_to ON transactions(to_holder);
	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp DESC)
	`
)

// sqliteTimeFormat is the standardized format used for stored timestamps
const sqliteTimeFormat = "2006-01-02 15:04:05"

// parseSQLiteTime handles the formats SQLite may hand back for timestamps
func parseSQLiteTime(value string) (time.Time, error) {
	formats := []string{
		sqliteTimeFormat,              // SQLite default format
		"2006-01-02T15:04:05Z",        // ISO 8601 format
		"2006-01-02T15:04:05-07:00",   // ISO 8601 with timezone
		time.RFC3339,                  // Another common format
	}

	var parseErr error
	for _, format := range formats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Create tables if they don't exist
	if _, err := db.Exec(createAccountsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating accounts table: %w", err)
	}

	if _, err := db.Exec(createTransactionsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating transactions table: %w", err)
	}

	if _, err := db.Exec(createTransactionIndexesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating transaction indexes: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// GetAccount retrieves an account by scope and holder ID
func (r *SQLiteRepository) GetAccount(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	query := `
		SELECT scope_id, holder_id, name, country, age, birth, income, rank,
		       balance, status, frozen, kind, faction, daily_spend, created_at, updated_at
		FROM accounts WHERE scope_id = ? AND holder_id = ?
	`

	row := r.db.QueryRowContext(ctx, query, scopeID, holderID)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return acct, nil
}

// rowScanner lets scanAccount work with both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*entities.Account, error) {
	var acct entities.Account
	var country, birth, rank, kind, faction, dailySpend sql.NullString
	var frozen int
	var createdAt, updatedAt string

	err := row.Scan(
		&acct.ScopeID,
		&acct.HolderID,
		&acct.DisplayName,
		&country,
		&acct.Age,
		&birth,
		&acct.MonthlyIncome,
		&rank,
		&acct.Balance,
		&acct.Status,
		&frozen,
		&kind,
		&faction,
		&dailySpend,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	acct.Country = country.String
	acct.BirthDate = birth.String
	acct.Rank = rank.String
	acct.Category = entities.AccountCategory(kind.String)
	acct.FactionName = faction.String
	acct.Frozen = frozen != 0

	if dailySpend.Valid && dailySpend.String != "" {
		if err := json.Unmarshal([]byte(dailySpend.String), &acct.DailySpend); err != nil {
			return nil, fmt.Errorf("error decoding daily spend: %w", err)
		}
	}

	if acct.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if acct.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}

	return &acct, nil
}

// SaveAccount creates or updates an account
func (r *SQLiteRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	account.UpdatedAt = time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = account.UpdatedAt
	}

	var dailySpend []byte
	if account.DailySpend != nil {
		var err error
		dailySpend, err = json.Marshal(account.DailySpend)
		if err != nil {
			return fmt.Errorf("error encoding daily spend: %w", err)
		}
	}

	frozen := 0
	if account.Frozen {
		frozen = 1
	}

	query := `
		INSERT INTO accounts (
			scope_id, holder_id, name, country, age, birth, income, rank,
			balance, status, frozen, kind, faction, daily_spend, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope_id, holder_id) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			age = excluded.age,
			birth = excluded.birth,
			income = excluded.income,
			rank = excluded.rank,
			balance = excluded.balance,
			status = excluded.status,
			frozen = excluded.frozen,
			kind = excluded.kind,
			faction = excluded.faction,
			daily_spend = excluded.daily_spend,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ScopeID,
		account.HolderID,
		account.DisplayName,
		account.Country,
		account.Age,
		account.BirthDate,
		account.MonthlyIncome,
		account.Rank,
		account.Balance,
		account.Status,
		frozen,
		account.Category,
		account.FactionName,
		string(dailySpend),
		account.CreatedAt.Format(sqliteTimeFormat),
		account.UpdatedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("error saving account: %w", err)
	}

	return nil
}

// ListAccounts retrieves all accounts in a scope
func (r *SQLiteRepository) ListAccounts(ctx context.Context, scopeID string) ([]*entities.Account, error) {
	query := `
		SELECT scope_id, holder_id, name, country, age, birth, income, rank,
		       balance, status, frozen, kind, faction, daily_spend, created_at, updated_at
		FROM accounts WHERE scope_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, scopeID)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// AddTransaction appends a transaction record
func (r *SQLiteRepository) AddTransaction(ctx context.Context, record *entities.TransactionRecord) error {
	// Generate ID if not provided
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	// Set timestamp if not provided
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	query := `
		INSERT INTO transactions (
			id, scope_id, type, from_holder, to_holder, amount, fee, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.ScopeID,
		record.Type,
		record.From,
		record.To,
		record.Amount,
		record.Fee,
		record.Timestamp.Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	return nil
}

// GetTransactions retrieves recent transaction records touching a holder
func (r *SQLiteRepository) GetTransactions(ctx context.Context, scopeID, holderID string, limit int) ([]*entities.TransactionRecord, error) {
	query := `
		SELECT id, scope_id, type, from_holder, to_holder, amount, fee, timestamp
		FROM transactions
		WHERE scope_id = ? AND (from_holder = ? OR to_holder = ?)
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, scopeID, holderID, holderID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var records []*entities.TransactionRecord
	for rows.Next() {
		var rec entities.TransactionRecord
		var from, to sql.NullString
		var timestamp string

		err := rows.Scan(
			&rec.ID,
			&rec.ScopeID,
			&rec.Type,
			&from,
			&to,
			&rec.Amount,
			&rec.Fee,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		rec.From = from.String
		rec.To = to.String
		if rec.Timestamp, err = parseSQLiteTime(timestamp); err != nil {
			return nil, err
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
