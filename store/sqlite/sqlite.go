/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Durable home for the ledger and for the game-state snapshots the
  scheduling engine writes through on every mutation.

INTERFACES IMPLEMENTED:
  generic.Store:      Transaction persistence
  generic.StateStore: Keyed JSON state (schedules, pending events, fleet,
                      contracts, missions, playtime)

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the transactions table
  - No DELETE statements on the transactions table
  - idempotency_key is UNIQUE; a second settlement of the same flight
    fails at the database even if the caller skipped its own check

KEY TABLES:
  transactions: Immutable ledger of money and reputation changes
  game_state:   One row per state key, replaced on write

CONCURRENCY:
  Uses sync.RWMutex around a single connection. ":memory:" databases are
  per-connection in SQLite, so the pool is capped at one.

WAL MODE:
  File databases are opened with WAL so readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/airline.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := airline.NewFlightLedger(store)

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/airline-engine/generic"
)

// Store implements generic.Store and generic.StateStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		entity_id TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		effective_at INTEGER NOT NULL,
		delta_value TEXT NOT NULL,
		delta_unit TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		metadata_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_resource_entity
		ON transactions(resource_type, entity_id, effective_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	-- Game state snapshots (write-through, last write wins)
	CREATE TABLE IF NOT EXISTS game_state (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (generic.Store interface)
// =============================================================================

const selectTransactions = `
	SELECT id, entity_id, resource_type, effective_at, delta_value, delta_unit,
	       tx_type, reference_id, reason, idempotency_key, metadata_json
	FROM transactions`

// Append adds a transaction to the ledger.
func (s *Store) Append(ctx context.Context, tx generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendTx(ctx, s.db, tx)
}

func (s *Store) appendTx(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, tx generic.Transaction) error {
	metadataJSON, _ := json.Marshal(tx.Metadata)

	query := `
		INSERT INTO transactions
		(id, entity_id, resource_type, effective_at, delta_value, delta_unit,
		 tx_type, reference_id, reason, idempotency_key, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		tx.ID,
		tx.EntityID,
		tx.Resource(),
		int64(tx.EffectiveAt),
		tx.Delta.Value.String(),
		tx.Delta.Unit,
		tx.Type,
		nullString(tx.ReferenceID),
		tx.Reason,
		nullString(tx.IdempotencyKey),
		string(metadataJSON),
		time.Now().UTC().Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// AppendBatch adds multiple transactions atomically.
func (s *Store) AppendBatch(ctx context.Context, txs []generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idempotencyKeys := make(map[string]bool)
	for _, tx := range txs {
		if tx.IdempotencyKey != "" {
			if idempotencyKeys[tx.IdempotencyKey] {
				return generic.ErrDuplicateIdempotencyKey
			}
			idempotencyKeys[tx.IdempotencyKey] = true
		}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, tx := range txs {
		if err := s.appendTx(ctx, sqlTx, tx); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// Load returns the transactions of a resource. An empty entityID matches all.
func (s *Store) Load(ctx context.Context, resource generic.ResourceType, entityID generic.EntityID) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := transactionFilter(resource, entityID)
	return s.queryTransactions(ctx, selectTransactions+where+" ORDER BY effective_at ASC, seq ASC", args...)
}

// LoadRange returns transactions with effective_at in [from, to].
func (s *Store) LoadRange(ctx context.Context, resource generic.ResourceType, entityID generic.EntityID, from, to generic.Tick) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := transactionFilter(resource, entityID)
	where += " AND effective_at >= ? AND effective_at <= ?"
	args = append(args, int64(from), int64(to))
	return s.queryTransactions(ctx, selectTransactions+where+" ORDER BY effective_at ASC, seq ASC", args...)
}

// Exists checks if an idempotency key exists.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

// Recent returns the newest transactions first (for the ledger view).
func (s *Store) Recent(ctx context.Context, limit int) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, selectTransactions+" ORDER BY seq DESC LIMIT ?", limit)
}

func transactionFilter(resource generic.ResourceType, entityID generic.EntityID) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if resource != nil {
		where += " AND resource_type = ?"
		args = append(args, resource.ResourceID())
	}
	if entityID != "" {
		where += " AND entity_id = ?"
		args = append(args, entityID)
	}
	return where, args
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]generic.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []generic.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (generic.Transaction, error) {
	var (
		tx             generic.Transaction
		effectiveAt    int64
		resourceTypeID string
		deltaValue     string
		deltaUnit      string
		referenceID    sql.NullString
		reason         sql.NullString
		idempotencyKey sql.NullString
		metadataJSON   sql.NullString
	)

	err := rows.Scan(
		&tx.ID, &tx.EntityID, &resourceTypeID,
		&effectiveAt, &deltaValue, &deltaUnit, &tx.Type,
		&referenceID, &reason, &idempotencyKey, &metadataJSON,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.ResourceType = generic.GetOrCreateResource(resourceTypeID)
	tx.EffectiveAt = generic.Tick(effectiveAt)
	tx.Delta = parseAmount(deltaValue, deltaUnit)
	tx.ReferenceID = referenceID.String
	tx.Reason = reason.String
	tx.IdempotencyKey = idempotencyKey.String

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		json.Unmarshal([]byte(metadataJSON.String), &tx.Metadata)
	}

	return tx, nil
}

// =============================================================================
// GAME STATE (generic.StateStore interface)
// =============================================================================

// Put replaces the JSON value stored under key.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_state (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM game_state WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return true, fmt.Errorf("failed to decode state %q: %w", key, err)
	}
	return true, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"transactions", "game_state"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseAmount(value, unit string) generic.Amount {
	return generic.Amount{
		Value: generic.MustParseDecimal(value),
		Unit:  generic.Unit(unit),
	}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
