package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// lineBoard returns n single-cell regions in a row: 0-1-2-...-(n-1).
func lineBoard(t *testing.T, n int) *Board {
	t.Helper()
	cells := make([]HexCoord, n)
	for i := range cells {
		cells[i] = HexCoord{Q: i, R: 0}
	}
	b, err := NewCellBoard(cells...)
	require.NoError(t, err)
	return b
}

func newState(t *testing.T, b *Board, rules Rules, players int, owners, dice []int) *GameState {
	t.Helper()
	gs, err := NewGameState(b, rules, players, owners, dice)
	require.NoError(t, err)
	return gs
}
