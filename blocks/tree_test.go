// blocks/tree_test.go
package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	in := []Block{
		{ID: "a"},
		{ID: "b", OrderIndex: Ptr(7), Tags: []string{"hot"}},
		{ID: "c", ParentID: Ptr("")},
	}

	out := Normalize(in)

	require.Len(t, out, 3)
	assert.Equal(t, 0, out[0].Order())
	assert.Equal(t, 7, out[1].Order())
	assert.Equal(t, 2, out[2].Order())
	assert.Equal(t, []string{}, out[0].Tags)
	assert.Equal(t, []string{"hot"}, out[1].Tags)
	assert.Nil(t, out[2].ParentID)
	assert.Nil(t, in[0].OrderIndex, "input untouched")
}

func TestBuildTree(t *testing.T) {
	blocks := []Block{
		{ID: "drinks", OrderIndex: Ptr(1)},
		{ID: "food", OrderIndex: Ptr(0)},
		{ID: "tea", ParentID: Ptr("drinks"), OrderIndex: Ptr(2)},
		{ID: "coffee", ParentID: Ptr("drinks"), OrderIndex: Ptr(1)},
		{ID: "orphan", ParentID: Ptr("deleted")},
		{ID: "soup", ParentID: Ptr("food")},
	}

	roots := BuildTree(blocks)

	var got []string
	var depths []int
	Walk(roots, func(n *Node, depth int) {
		got = append(got, n.Block.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"orphan", "food", "soup", "drinks", "coffee", "tea"}, got)
	assert.Equal(t, []int{0, 0, 1, 0, 1, 1}, depths)
}

func TestMove(t *testing.T) {
	blocks := []Block{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	tests := []struct {
		name      string
		source    string
		target    string
		wantIDs   []string
		wantMoved bool
	}{
		{name: "move down", source: "a", target: "c", wantIDs: []string{"b", "c", "a", "d"}, wantMoved: true},
		{name: "move up", source: "d", target: "b", wantIDs: []string{"a", "d", "b", "c"}, wantMoved: true},
		{name: "to end", source: "a", target: "d", wantIDs: []string{"b", "c", "d", "a"}, wantMoved: true},
		{name: "same id", source: "b", target: "b", wantIDs: []string{"a", "b", "c", "d"}},
		{name: "unknown source", source: "x", target: "b", wantIDs: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, moved := Move(blocks, tt.source, tt.target)

			assert.Equal(t, tt.wantMoved, moved)
			assert.Equal(t, tt.wantIDs, IDs(out))
			if moved {
				for i, b := range out {
					assert.Equal(t, i, b.Order())
				}
			}
		})
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, IDs(blocks), "input untouched")
}

func TestRoots(t *testing.T) {
	blocks := []Block{{ID: "a"}, {ID: "b", ParentID: Ptr("a")}, {ID: "c"}}

	assert.Equal(t, []string{"a", "c"}, IDs(Roots(blocks)))
}
