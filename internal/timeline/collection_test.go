package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectionSetAndLookup(t *testing.T) {
	var c collection
	c.set([]Item{
		{ID: "a", EventID: "$a", Kind: KindMessage},
		{ID: "b", EventID: "$b", Kind: KindMessage},
		{ID: "spin", Kind: KindPaginationSpinner},
	})

	require.Equal(t, 3, c.len())

	it, ok := c.byID("b")
	require.True(t, ok)
	require.Equal(t, "$b", it.EventID)

	_, ok = c.byID("missing")
	require.False(t, ok)

	require.Equal(t, []string{"spin", "b", "a"}, c.displayOrder())
}

func TestCollectionDropsInvalidAndDuplicateItems(t *testing.T) {
	var c collection
	c.set([]Item{
		{ID: "", EventID: "$ghost"},
		{ID: "a", EventID: "$a1"},
		{ID: "a", EventID: "$a2"},
	})

	require.Equal(t, 1, c.len())
	it, ok := c.byID("a")
	require.True(t, ok)
	require.Equal(t, "$a1", it.EventID, "first occurrence wins")
}

func TestCollectionFindEvent(t *testing.T) {
	var c collection
	c.set([]Item{
		{ID: "a", EventID: "$dup"},
		{ID: "b", EventID: "$dup"},
	})

	it, ok := c.findEvent("$dup")
	require.True(t, ok)
	require.Equal(t, "a", it.ID, "producer order decides ties")

	_, ok = c.findEvent("")
	require.False(t, ok)
	_, ok = c.findEvent("$nope")
	require.False(t, ok)
}

func TestCollectionSetReplacesWholesale(t *testing.T) {
	var c collection
	c.set([]Item{{ID: "a"}, {ID: "b"}})
	c.set([]Item{{ID: "c"}})

	require.Equal(t, 1, c.len())
	_, ok := c.byID("a")
	require.False(t, ok)
}
