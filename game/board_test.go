package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	t.Run("computing adjacency from hex neighbors", func(t *testing.T) {
		b := lineBoard(t, 3)

		require.Equal(t, []int{1}, b.Neighbors(0))
		require.Equal(t, []int{0, 2}, b.Neighbors(1))
		require.True(t, b.IsAdjacent(0, 1), "Neighboring cells should be adjacent")
		require.True(t, b.IsAdjacent(1, 0), "Adjacency should be symmetric")
		require.False(t, b.IsAdjacent(0, 2), "Cells two steps apart should not be adjacent")
		require.False(t, b.IsAdjacent(1, 1), "Adjacency should be irreflexive")
	})

	t.Run("single cell has at most six neighbors", func(t *testing.T) {
		center := HexCoord{}
		cells := []HexCoord{center}
		for _, n := range center.Neighbors() {
			cells = append(cells, n)
		}
		b, err := NewCellBoard(cells...)

		require.NoError(t, err)
		require.Len(t, b.Neighbors(0), 6)
		require.NoError(t, b.Validate())
	})

	t.Run("multi-cell regions border through any cell", func(t *testing.T) {
		b, err := NewBoard([][]HexCoord{
			{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}},
			{{Q: 3, R: 0}},
			{{Q: 0, R: 1}},
		})

		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, b.Neighbors(0))
		require.Equal(t, HexCoord{Q: 1, R: 0}, b.Regions[0].Position, "Position should be the central cell")
		id, ok := b.RegionAt(HexCoord{Q: 2, R: 0})
		require.True(t, ok)
		require.Equal(t, 0, id)
	})

	t.Run("rejecting overlapping regions", func(t *testing.T) {
		_, err := NewBoard([][]HexCoord{{{Q: 0, R: 0}}, {{Q: 0, R: 0}}})

		require.Error(t, err)
	})

	t.Run("rejecting empty regions", func(t *testing.T) {
		_, err := NewBoard([][]HexCoord{{{Q: 0, R: 0}}, {}})

		require.Error(t, err)
	})

	t.Run("neighbors of an unknown region panics", func(t *testing.T) {
		b := lineBoard(t, 2)

		require.Panics(t, func() { b.Neighbors(5) })
		require.False(t, b.IsAdjacent(0, 5), "Unknown regions are never adjacent")
	})
}

func TestBoardValidate(t *testing.T) {
	t.Run("disconnected board is rejected", func(t *testing.T) {
		b, err := NewCellBoard(HexCoord{Q: 0, R: 0}, HexCoord{Q: 5, R: 5})
		require.NoError(t, err)

		require.Error(t, b.Validate())
	})

	t.Run("asymmetric adjacency is an invariant violation", func(t *testing.T) {
		b := lineBoard(t, 3)
		b.Regions[2].Adjacent = []int{0, 1}

		require.ErrorIs(t, b.Validate(), ErrInvariantViolation)
	})
}

func TestConnectedComponents(t *testing.T) {
	b := lineBoard(t, 6)
	owners := []int{0, 0, 1, 0, 0, 0}

	t.Run("splitting territory into clusters, largest first", func(t *testing.T) {
		got := b.ConnectedComponents(owners, 0)

		require.Equal(t, [][]int{{3, 4, 5}, {0, 1}}, got)
	})

	t.Run("single region cluster", func(t *testing.T) {
		require.Equal(t, [][]int{{2}}, b.ConnectedComponents(owners, 1))
	})

	t.Run("player without regions has no clusters", func(t *testing.T) {
		require.Empty(t, b.ConnectedComponents(owners, 2))
	})
}

func TestDistance(t *testing.T) {
	require.Equal(t, 0, Distance(HexCoord{}, HexCoord{}))
	require.Equal(t, 1, Distance(HexCoord{}, HexCoord{Q: 0, R: 1}))
	require.Equal(t, 3, Distance(HexCoord{Q: -1, R: 2}, HexCoord{Q: 2, R: 0}))
}
