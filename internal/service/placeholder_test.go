package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-hub/backend/internal/model"
)

func TestMergePlaceholder_AlreadyMerged(t *testing.T) {
	store := newMemStore()
	repo := newMockRepository(store)
	placeholder := seedItem(store, "Water", model.CategoryPending, 0)
	canonical := seedItem(store, "Water", model.CategoryFoodWater, 10)

	// 并发事务先一步完成合并
	delete(store.items, placeholder.ItemID)

	target, err := mergePlaceholder(context.Background(), repo, placeholder.ItemID, canonical, 5, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, canonical.ItemID, target)
	assert.Equal(t, 15, stockOf(store, canonical.ItemID))
}

func TestMergePlaceholder_AlreadyPromoted(t *testing.T) {
	store := newMemStore()
	repo := newMockRepository(store)
	placeholder := seedItem(store, "Water", model.CategoryPending, 2)
	canonical := seedItem(store, "Water", model.CategoryFoodWater, 10)

	store.items[placeholder.ItemID].Category = model.CategoryGeneral

	target, err := mergePlaceholder(context.Background(), repo, placeholder.ItemID, canonical, 5, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, placeholder.ItemID, target)
	assert.Equal(t, 7, stockOf(store, placeholder.ItemID))
	assert.Equal(t, 10, stockOf(store, canonical.ItemID))
}
