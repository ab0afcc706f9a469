package engine

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/store"
)

// memoryTable is an in-memory Table that counts backend calls
type memoryTable[T Identified] struct {
	label  string
	rows   []T
	nextID int
	calls  map[string]int
	failOn map[string]error
}

func newMemoryTable[T Identified](label string, rows ...T) *memoryTable[T] {
	return &memoryTable[T]{label: label, rows: rows, calls: map[string]int{}, failOn: map[string]error{}}
}

func (m *memoryTable[T]) total() int {
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *memoryTable[T]) hit(op string) error {
	m.calls[op]++
	return m.failOn[op]
}

func (m *memoryTable[T]) GetAll(ctx context.Context) store.Result[[]T] {
	if err := m.hit("getAll"); err != nil {
		return store.Fail[[]T](err)
	}
	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return store.OK(out)
}

func (m *memoryTable[T]) Find(ctx context.Context, q store.Query) store.Result[store.Listing[T]] {
	res := m.GetAll(ctx)
	if !res.OK() {
		return store.Fail[store.Listing[T]](res.Err)
	}
	return store.OK(store.Listing[T]{Items: res.Data, Total: int64(len(res.Data))})
}

func (m *memoryTable[T]) GetByID(ctx context.Context, id string) store.Result[T] {
	if err := m.hit("getByID"); err != nil {
		return store.Fail[T](err)
	}
	for _, r := range m.rows {
		if r.RecordID() == id {
			return store.OK(r)
		}
	}
	return store.Fail[T](apperrors.NewNotFoundError(m.label))
}

func (m *memoryTable[T]) Create(ctx context.Context, record T) store.Result[T] {
	if err := m.hit("create"); err != nil {
		return store.Fail[T](err)
	}
	m.nextID++
	created, err := merge(record, map[string]interface{}{"id": fmt.Sprintf("%s-%d", m.label, m.nextID)})
	if err != nil {
		return store.Fail[T](err)
	}
	m.rows = append(m.rows, created)
	return store.OK(created)
}

func (m *memoryTable[T]) Update(ctx context.Context, id string, patch map[string]interface{}) store.Result[T] {
	if err := m.hit("update"); err != nil {
		return store.Fail[T](err)
	}
	for i, r := range m.rows {
		if r.RecordID() == id {
			updated, err := merge(r, patch)
			if err != nil {
				return store.Fail[T](err)
			}
			m.rows[i] = updated
			return store.OK(updated)
		}
	}
	return store.Fail[T](apperrors.NewNotFoundError(m.label))
}

func (m *memoryTable[T]) Delete(ctx context.Context, id string) store.Result[bool] {
	if err := m.hit("delete"); err != nil {
		return store.Fail[bool](err)
	}
	for i, r := range m.rows {
		if r.RecordID() == id {
			m.rows = append(m.rows[:i:i], m.rows[i+1:]...)
			return store.OK(true)
		}
	}
	return store.Fail[bool](apperrors.NewNotFoundError(m.label))
}

// merge overlays patch onto record through their JSON forms
func merge[T any](record T, patch map[string]interface{}) (T, error) {
	var out T
	data, err := json.Marshal(record)
	if err != nil {
		return out, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return out, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	data, err = json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
