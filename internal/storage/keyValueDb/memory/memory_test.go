package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearbid/auctiond/internal/storage/keyValueDb"
)

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	db := NewDB()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))

	got, err := db.Read(ctx, []byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// The stored value must not alias the caller's slice.
	got[0] = 'X'
	again, err := db.Read(ctx, []byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), again)

	require.NoError(t, db.Delete(ctx, []byte("k1")))
	_, err = db.Read(ctx, []byte("k1"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, db.Delete(ctx, []byte("k1")))
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	db := NewDB()

	require.NoError(t, db.Write(ctx, []byte("drop"), []byte("x")))

	err := db.Batch(ctx, []keyValueDb.BatchOperation{
		{Type: keyValueDb.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: keyValueDb.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: keyValueDb.BatchDelete, Key: []byte("drop")},
	})
	require.NoError(t, err)

	got, err := db.Read(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)

	_, err = db.Read(ctx, []byte("drop"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
}

func TestIteratorRange(t *testing.T) {
	ctx := context.Background()
	db := NewDB()

	for _, k := range []string{"a1", "a2", "b1", "c1"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
	}

	it, err := db.Iterator(ctx, []byte("a1"), []byte("b2"))
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	require.Equal(t, []string{"a1", "a2", "b1"}, keys)
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	require.NoError(t, db.Close())

	_, err := db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, keyValueDb.ErrDBClosed)
	require.ErrorIs(t, db.Write(ctx, []byte("k"), nil), keyValueDb.ErrDBClosed)
	require.ErrorIs(t, db.Delete(ctx, []byte("k")), keyValueDb.ErrDBClosed)
}
