package model

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemMeta = &Meta{
	Name:        "item",
	VerboseName: "item",
	Fields: []Field{
		{Name: "name", Kind: Text, Required: true},
	},
}

func newItemStore(t *testing.T, n int) *MemStore {
	t.Helper()
	s := NewMemStore(itemMeta)
	s.LabelFunc = func(v Values) string { name, _ := v["name"].(string); return name }
	for i := 1; i <= n; i++ {
		_, err := s.Create(context.Background(), Values{"name": fmt.Sprintf("Item %02d", i)})
		require.NoError(t, err)
	}
	return s
}

func TestMemStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t, 3)

	t.Run("count and ordered list", func(t *testing.T) {
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		all, err := s.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, int64(1), all[0].PK())
		assert.Equal(t, int64(3), all[2].PK())
	})

	t.Run("list window", func(t *testing.T) {
		page, err := s.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(2), page[0].PK())

		empty, err := s.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("by pk", func(t *testing.T) {
		inst, err := s.ByPK(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Item 02", inst.Label())

		_, err = s.ByPK(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("by pks skips missing", func(t *testing.T) {
		got, err := s.ByPKs(ctx, []int64{1, 99, 3})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("update relabels", func(t *testing.T) {
		inst, err := s.Update(ctx, 1, Values{"name": "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", inst.Label())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, 3))
		_, err := s.ByPK(ctx, 3)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, 3), ErrNotFound)
	})
}

func TestMemStoreTenantView(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(itemMeta)
	s.TenantOf = func(inst Instance) string {
		tenant, _ := inst.Get("tenant").(string)
		return tenant
	}
	for i, tenant := range []string{"a", "a", "b"} {
		_, err := s.Create(ctx, Values{"name": fmt.Sprintf("Item %d", i), "tenant": tenant})
		require.NoError(t, err)
	}

	view := s.ForTenant("a").(*MemStore)

	t.Run("reads are filtered", func(t *testing.T) {
		count, err := view.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		_, err = view.ByPK(ctx, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("writes respect the view", func(t *testing.T) {
		assert.ErrorIs(t, view.Delete(ctx, 3), ErrNotFound)
		require.NoError(t, view.Delete(ctx, 1))

		// The deletion is visible through the unscoped store too.
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("unscoped store sees everything", func(t *testing.T) {
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
