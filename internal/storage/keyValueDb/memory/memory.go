// Package memory provides an in-memory keyValueDb backend, used by the
// standalone daemon mode and throughout the tests.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/clearbid/auctiond/internal/storage/keyValueDb"
)

// DB is a mutex-guarded map satisfying keyValueDb.DB.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, keyValueDb.ErrDBClosed
	}
	val, ok := m.data[string(key)]
	if !ok {
		return nil, keyValueDb.ErrKeyNotFound
	}
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	valCopy := make([]byte, len(value))
	copy(valCopy, value)
	m.data[string(key)] = valCopy
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			valCopy := make([]byte, len(op.Value))
			copy(valCopy, op.Value)
			m.data[string(op.Key)] = valCopy
		case keyValueDb.BatchDelete:
			delete(m.data, string(op.Key))
		default:
			return keyValueDb.ErrBatchOperationFailed
		}
	}
	return nil
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (keyValueDb.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, keyValueDb.ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	it := &iterator{idx: -1}
	for _, k := range keys {
		val := m.data[k]
		valCopy := make([]byte, len(val))
		copy(valCopy, val)
		it.keys = append(it.keys, []byte(k))
		it.values = append(it.values, valCopy)
	}
	return it, nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

type iterator struct {
	keys   [][]byte
	values [][]byte
	idx    int
}

func (it *iterator) Next() bool {
	if it.idx+1 >= len(it.keys) {
		return false
	}
	it.idx++
	return true
}

func (it *iterator) Key() []byte   { return it.keys[it.idx] }
func (it *iterator) Value() []byte { return it.values[it.idx] }
func (it *iterator) Error() error  { return nil }
func (it *iterator) Close() error  { return nil }
