// Package store provides Catalog implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// MEMORY CATALOG - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	items     map[inventory.ItemID]inventory.Item
	schedules map[inventory.ItemID][]inventory.ScheduledUse
	ids       map[string]bool
}

var _ inventory.Catalog = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		items:     make(map[inventory.ItemID]inventory.Item),
		schedules: make(map[inventory.ItemID][]inventory.ScheduledUse),
		ids:       make(map[string]bool),
	}
}

func (m *Memory) CreateItem(_ context.Context, item inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; ok {
		return fmt.Errorf("item %s: %w", item.ID, generic.ErrDuplicateItem)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	m.items[item.ID] = item
	return nil
}

func (m *Memory) GetItem(_ context.Context, id inventory.ItemID) (*inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, generic.ErrItemNotFound)
	}
	return &item, nil
}

func (m *Memory) ListItems(_ context.Context) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.Item, 0, len(m.items))
	for _, item := range m.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) AddSchedule(_ context.Context, id inventory.ItemID, s inventory.ScheduledUse) (inventory.ScheduledUse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return inventory.ScheduledUse{}, fmt.Errorf("item %s: %w", id, generic.ErrItemNotFound)
	}
	switch {
	case s.ID == "":
		s.ID = nextScheduleID(id, len(m.schedules[id]), func(candidate string) bool { return m.ids[candidate] })
	case m.ids[s.ID]:
		return inventory.ScheduledUse{}, fmt.Errorf("schedule %s: %w", s.ID, generic.ErrDuplicateSchedule)
	}
	m.ids[s.ID] = true
	m.schedules[id] = append(m.schedules[id], s)
	return s, nil
}

func (m *Memory) Schedules(_ context.Context, id inventory.ItemID) ([]inventory.ScheduledUse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.items[id]; !ok {
		return nil, fmt.Errorf("item %s: %w", id, generic.ErrItemNotFound)
	}
	result := make([]inventory.ScheduledUse, len(m.schedules[id]))
	copy(result, m.schedules[id])
	return result, nil
}

// nextScheduleID returns "<item>-<n>" for the first n after count that is not taken.
func nextScheduleID(id inventory.ItemID, count int, taken func(string) bool) string {
	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
