// Package store provides in-memory implementations of generic stores.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// MEMORY CALENDAR - In-memory holiday store (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	holidays map[string]generic.Holiday
}

var _ generic.HolidayStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{holidays: make(map[string]generic.Holiday)}
}

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return generic.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, period generic.Period) (generic.Holidays, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result generic.Holidays
	for _, h := range m.holidays {
		if h.Recurring || period.Contains(h.Date) {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
