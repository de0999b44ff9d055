package recordstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"verimix/protocol"
)

func Test_RecordStore_SetGet(t *testing.T) {
	store := New()

	rec := &protocol.Record{ID: "run-1"}
	store.Set(rec)

	require.True(t, store.Exists("run-1"))
	require.Equal(t, rec, store.Get("run-1"))
	require.Nil(t, store.Get("missing"))
	require.Equal(t, 1, store.Len())
}

func Test_RecordStore_Delete(t *testing.T) {
	store := New()
	store.Set(&protocol.Record{ID: "run-1"})
	store.Delete("run-1")

	require.False(t, store.Exists("run-1"))
	require.Equal(t, 0, store.Len())
}

func Test_RecordStore_GetAll_ForEach(t *testing.T) {
	store := New()
	store.Set(&protocol.Record{ID: "a"})
	store.Set(&protocol.Record{ID: "b"})
	store.Set(&protocol.Record{ID: "c"})

	require.Len(t, store.GetAll(), 3)

	count := 0
	store.ForEach(func(rec *protocol.Record) bool {
		count++
		return count < 2
	})
	require.Equal(t, 2, count)
}
