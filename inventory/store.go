/*
store.go - Persistence interface for catalogued items and their schedules

PURPOSE:
  The Catalog is the schedule-input source: it remembers which consumables
  exist and which recurring uses draw on them, so a forecast can be asked
  for by item ID. It never stores on-hand quantities; those are supplied by
  the caller on every forecast.

STORED AS GIVEN:
  Schedules are persisted without validation. An invalid schedule stays in
  the catalog and is excluded by the forecast engine like any other.

IMPLEMENTATIONS:
  - inventory/store/memory.go: In-memory, for tests
  - store/sqlite/sqlite.go: SQLite for the server

SEE ALSO:
  - forecast.go: Consumes Schedules()
  - api/handlers.go: Exposes the catalog over HTTP
*/
package inventory

import "context"

// Catalog handles persistence of items and their schedules.
type Catalog interface {
	// CreateItem adds an item. Returns generic.ErrDuplicateItem if the ID is taken.
	CreateItem(ctx context.Context, item Item) error

	// GetItem returns generic.ErrItemNotFound for unknown IDs.
	GetItem(ctx context.Context, id ItemID) (*Item, error)

	// ListItems returns all items ordered by ID.
	ListItems(ctx context.Context) ([]Item, error)

	// AddSchedule attaches a schedule to an item and returns the stored
	// schedule. A schedule without an ID gets "<item>-<n>" with the first free
	// n after the item's schedule count. Schedule IDs are unique across items;
	// a taken ID returns generic.ErrDuplicateSchedule.
	AddSchedule(ctx context.Context, id ItemID, s ScheduledUse) (ScheduledUse, error)

	// Schedules returns an item's schedules in insertion order.
	Schedules(ctx context.Context, id ItemID) ([]ScheduledUse, error)
}
