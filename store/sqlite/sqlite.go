/*
Package sqlite provides a SQLite-backed implementation of inventory.Catalog.

PURPOSE:
  Persists catalogued items and the recurring schedules that draw on them,
  so the server can forecast by item ID. On-hand quantities are never
  written here.

KEY TABLES:
  items:     One row per consumable (id, name, unit)
  schedules: Recurring uses, stored as given (invalid rows are allowed and
             are filtered by the forecast engine, not by the store)

COLUMN ENCODING:
  amount      TEXT  decimal string, never REAL, so 12.987 stays 12.987
  start_date  TEXT  YYYY-MM-DD, '' when absent
  end_date    TEXT  YYYY-MM-DD or NULL
  weekday     INT   0 (Sunday) .. 6 (Saturday) or NULL

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, same as the in-memory catalog.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  schedules, err := store.Schedules(ctx, "acetone")

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - inventory/store.go: Interface definition
  - inventory/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// Store implements inventory.Catalog using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ inventory.Catalog = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

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
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		item_id TEXT NOT NULL REFERENCES items(id),
		amount TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		periodicity TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT,
		weekday INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_item
		ON schedules(item_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ITEMS
// =============================================================================

// CreateItem inserts an item.
func (s *Store) CreateItem(ctx context.Context, item inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, name, unit, created_at) VALUES (?, ?, ?, ?)",
		item.ID, item.Name, item.Unit, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("item %s: %w", item.ID, generic.ErrDuplicateItem)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id inventory.ItemID) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getItem(ctx, id)
}

func (s *Store) getItem(ctx context.Context, id inventory.ItemID) (*inventory.Item, error) {
	var item inventory.Item
	var unit, createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, unit, created_at FROM items WHERE id = ?",
		id,
	).Scan(&item.ID, &item.Name, &unit, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", id, generic.ErrItemNotFound)
	}
	if err != nil {
		return nil, err
	}

	item.Unit = generic.Unit(unit)
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &item, nil
}

// ListItems returns all items.
func (s *Store) ListItems(ctx context.Context) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, unit, created_at FROM items ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []inventory.Item{}
	for rows.Next() {
		var item inventory.Item
		var unit, createdAt string
		if err := rows.Scan(&item.ID, &item.Name, &unit, &createdAt); err != nil {
			return nil, err
		}
		item.Unit = generic.Unit(unit)
		item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

// =============================================================================
// SCHEDULES
// =============================================================================

// AddSchedule stores a schedule for an item.
func (s *Store) AddSchedule(ctx context.Context, id inventory.ItemID, sch inventory.ScheduledUse) (inventory.ScheduledUse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getItem(ctx, id); err != nil {
		return inventory.ScheduledUse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inventory.ScheduledUse{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if sch.ID == "" {
		if sch.ID, err = nextScheduleID(ctx, tx, id); err != nil {
			return inventory.ScheduledUse{}, err
		}
	}

	var endDate sql.NullString
	if sch.End != nil {
		endDate = sql.NullString{String: sch.End.String(), Valid: true}
	}
	var weekday sql.NullInt64
	if sch.Weekday != nil {
		weekday = sql.NullInt64{Int64: int64(*sch.Weekday), Valid: true}
	}
	var startDate string
	if !sch.Start.IsZero() {
		startDate = sch.Start.String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedules
		(id, item_id, amount, unit, periodicity, start_date, end_date, weekday, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sch.ID, id,
		sch.Amount.Value.String(), sch.Amount.Unit,
		sch.Periodicity, startDate, endDate, weekday,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return inventory.ScheduledUse{}, fmt.Errorf("schedule %s: %w", sch.ID, generic.ErrDuplicateSchedule)
		}
		return inventory.ScheduledUse{}, fmt.Errorf("failed to add schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return inventory.ScheduledUse{}, err
	}
	return sch, nil
}

// Schedules returns an item's schedules in insertion order.
func (s *Store) Schedules(ctx context.Context, id inventory.ItemID) ([]inventory.ScheduledUse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getItem(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, unit, periodicity, start_date, end_date, weekday
		FROM schedules
		WHERE item_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	schedules := []inventory.ScheduledUse{}
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sch)
	}
	return schedules, rows.Err()
}

func scanSchedule(rows *sql.Rows) (inventory.ScheduledUse, error) {
	var (
		sch                       inventory.ScheduledUse
		amount, unit, periodicity string
		startDate                 string
		endDate                   sql.NullString
		weekday                   sql.NullInt64
	)

	if err := rows.Scan(&sch.ID, &amount, &unit, &periodicity, &startDate, &endDate, &weekday); err != nil {
		return sch, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return sch, fmt.Errorf("schedule %s: amount %q: %w", sch.ID, amount, err)
	}
	sch.Amount = generic.NewAmountFromDecimal(value, generic.Unit(unit))
	sch.Periodicity = inventory.Periodicity(periodicity)

	if startDate != "" {
		start, err := generic.ParseDate(startDate)
		if err != nil {
			return sch, err
		}
		sch.Start = start
	}
	if endDate.Valid {
		end, err := generic.ParseDate(endDate.String)
		if err != nil {
			return sch, err
		}
		sch.End = &end
	}
	if weekday.Valid {
		sch.Weekday = inventory.WeekdayPtr(time.Weekday(weekday.Int64))
	}
	return sch, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"schedules", "items"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// nextScheduleID returns "<item>-<n>" for the first n after the item's
// schedule count that no stored schedule uses.
func nextScheduleID(ctx context.Context, tx *sql.Tx, id inventory.ItemID) (string, error) {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules WHERE item_id = ?", id).Scan(&count); err != nil {
		return "", err
	}
	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		var taken bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schedules WHERE id = ?)", candidate).Scan(&taken); err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
