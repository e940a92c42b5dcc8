package db

import (
	"fmt"
	"sync"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
)

// table is an ordered in-memory id -> record map. Ids increase monotonically and
// are never reused, even after a delete. Callers must hold mu.
type table[T any] struct {
	mu     sync.RWMutex
	kind   string
	nextID int64
	order  []int64
	rows   map[int64]T
}

func newTable[T any](kind string) *table[T] {
	return &table[T]{
		kind:   kind,
		nextID: 1,
		rows:   make(map[int64]T),
	}
}

// insert allocates the next id and stores the row built for it.
func (t *table[T]) insert(build func(id int64) T) T {
	id := t.nextID
	t.nextID++
	row := build(id)
	t.rows[id] = row
	t.order = append(t.order, id)
	return row
}

func (t *table[T]) get(id int64) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id int64, row T) error {
	if _, ok := t.rows[id]; !ok {
		return t.notFound(id)
	}
	t.rows[id] = row
	return nil
}

func (t *table[T]) remove(id int64) error {
	if _, ok := t.rows[id]; !ok {
		return t.notFound(id)
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// scan returns rows in insertion order.
func (t *table[T]) scan() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) notFound(id int64) error {
	return fmt.Errorf("%s %d: %w", t.kind, id, apperr.ErrNotFound)
}
