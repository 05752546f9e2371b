package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleAddsThenRemoves(t *testing.T) {
	wishlist := &Wishlist{}
	item := WishlistItem{ProductID: 1, Name: "Leather bag"}

	assert.Equal(t, ToggleAdded, wishlist.Toggle(item))
	assert.True(t, wishlist.Contains(1))

	assert.Equal(t, ToggleRemoved, wishlist.Toggle(item))
	assert.False(t, wishlist.Contains(1))
	assert.Empty(t, wishlist.Items)
}

func TestToggleIsSelfInverse(t *testing.T) {
	wishlist := &Wishlist{}
	wishlist.Toggle(WishlistItem{ProductID: 1, Name: "A"})
	wishlist.Toggle(WishlistItem{ProductID: 2, Name: "B"})

	// 偶数次 toggle 回到原状态
	wishlist.Toggle(WishlistItem{ProductID: 2, Name: "B"})
	wishlist.Toggle(WishlistItem{ProductID: 2, Name: "B"})

	assert.True(t, wishlist.Contains(1))
	assert.True(t, wishlist.Contains(2))
	assert.Len(t, wishlist.Items, 2)
}

func TestContainsMissing(t *testing.T) {
	wishlist := &Wishlist{}
	assert.False(t, wishlist.Contains(42))
}
