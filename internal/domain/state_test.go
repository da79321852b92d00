package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGameState(t *testing.T) {
	s := NewGameState()

	require.Equal(t, Joining, s.Phase())
	require.Len(t, s.Figures, 10)
	require.Len(t, s.Positions, 5, "only black blockers start on the board")
	for c := Color(0); c < ColorCount; c++ {
		occupants := s.Occupants(PentaBoard().Joint(c).ID())
		require.Len(t, occupants, 1)
		require.Equal(t, BlackBlocker, occupants[0].Kind)
	}
	require.False(t, s.BlockerPending())
}

func TestRestore(t *testing.T) {
	s := NewGameState()
	frame := s.Frame()
	s.Turn = 7
	s.Winner = "a"
	s.SelectedGrayPiece = "g0"

	restored := s.Restore(frame)
	require.Equal(t, 0, restored.Turn)
	require.Empty(t, restored.Winner)
	require.False(t, restored.BlockerPending())
	require.Equal(t, 7, s.Turn, "restore should not modify the receiver")
}
