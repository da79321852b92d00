package game

import (
	"context"
	"maps"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUseCase() useCase {
	return New(zap.NewNop())
}

func apply(t *testing.T, u useCase, state domain.GameState, event domain.Event) domain.GameState {
	t.Helper()
	next, err := u.ApplyEvent(state, event)
	require.NoError(t, err)
	return next
}

func applyLegal(t *testing.T, u useCase, state domain.GameState, event domain.Event) domain.GameState {
	t.Helper()
	next := apply(t, u, state, event)
	require.Nil(t, next.IllegalMove, "%s should be legal", event.Type())
	return next
}

func startedGame(t *testing.T, u useCase) domain.GameState {
	t.Helper()
	state := domain.NewGameState()
	state = applyLegal(t, u, state, domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "a", FigureID: "triangle"}})
	state = applyLegal(t, u, state, domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "b", FigureID: "square"}})
	return applyLegal(t, u, state, domain.InitGameEvent{})
}

// withPositions returns s with the given pieces moved, an empty field id takes
// the piece off the board.
func withPositions(s domain.GameState, moved map[string]string) domain.GameState {
	positions := maps.Clone(s.Positions)
	for id, fieldID := range moved {
		if fieldID == "" {
			delete(positions, id)
			continue
		}
		positions[id] = fieldID
	}
	s.Positions = positions
	return s
}

func ref(id string) *string {
	return &id
}

func undoLast(s domain.GameState, n int) domain.UndoEvent {
	moves := make([]domain.Notation, 0, n)
	for i := len(s.History) - 1; i >= len(s.History)-n; i-- {
		moves = append(moves, domain.Notation{Event: s.History[i].Move.Notation()})
	}
	return domain.UndoEvent{Moves: moves}
}

func requireSameGame(t *testing.T, want, got domain.GameState) {
	t.Helper()
	require.Equal(t, want.Positions, got.Positions)
	require.Equal(t, want.Frame(), got.Frame())
	require.Equal(t, want.Notations(), got.Notations())
}

func TestJoinAndInit(t *testing.T) {
	u := newTestUseCase()
	state := startedGame(t, u)

	require.True(t, state.GameStarted)
	require.Equal(t, 0, state.Turn)
	require.Equal(t, "a", state.CurrentPlayer.ID)
	require.Equal(t, domain.Active, state.Phase())
	corners := make(map[string]int)
	for _, player := range []string{"a", "b"} {
		pieces := state.PlayerPieces(player)
		require.Len(t, pieces, 5)
		for _, p := range pieces {
			f, ok := domain.PentaBoard().Field(state.Positions[p.ID])
			require.True(t, ok)
			require.Equal(t, domain.Corner, f.Kind())
			corners[f.ID()]++
		}
	}
	require.Len(t, corners, 5, "pieces should cover all corners")

	t.Run("join after start", func(t *testing.T) {
		next := apply(t, u, state, domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "c"}})
		require.NotNil(t, next.IllegalMove)
		require.Len(t, next.Players, 2)
	})

	t.Run("init without players", func(t *testing.T) {
		next := apply(t, u, domain.NewGameState(), domain.InitGameEvent{})
		require.NotNil(t, next.IllegalMove)
		require.False(t, next.GameStarted)
	})

	t.Run("join twice", func(t *testing.T) {
		s := applyLegal(t, u, domain.NewGameState(), domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "a"}})
		next := apply(t, u, s, domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "a"}})
		require.NotNil(t, next.IllegalMove)
	})
}

func TestIllegalMove(t *testing.T) {
	u := newTestUseCase()
	state := startedGame(t, u)

	t.Run("piece of another player", func(t *testing.T) {
		next := apply(t, u, state, domain.MovePlayerEvent{Player: "b", Piece: "p10", From: "c2", To: "c1c2/3"})
		require.NotNil(t, next.IllegalMove)
		require.Contains(t, next.IllegalMove.Reason, "currentPlayer")
		require.Len(t, next.History, len(state.History))
		require.Equal(t, state.Positions, next.Positions)
	})

	t.Run("piece not on source", func(t *testing.T) {
		next := apply(t, u, state, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c3", To: "c2c3/3"})
		require.NotNil(t, next.IllegalMove)
	})

	t.Run("same source and target", func(t *testing.T) {
		next := apply(t, u, state, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "c2"})
		require.NotNil(t, next.IllegalMove)
	})

	t.Run("onto a player piece", func(t *testing.T) {
		s := withPositions(state, map[string]string{"p10": "c2j0/1"})
		next := apply(t, u, s, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "c2j0/1"})
		require.NotNil(t, next.IllegalMove)
	})

	t.Run("no path", func(t *testing.T) {
		s := withPositions(state, map[string]string{"b1": "c2j0/2", "b2": "c2j0/4"})
		next := apply(t, u, s, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "c2j0/3"})
		require.NotNil(t, next.IllegalMove)
		require.Contains(t, next.IllegalMove.Reason, "no path")
	})

	t.Run("clear", func(t *testing.T) {
		next := apply(t, u, state, domain.MovePlayerEvent{Player: "b", Piece: "p10", From: "c2", To: "c1c2/3"})
		require.NotNil(t, next.IllegalMove)
		require.Nil(t, u.ClearIllegalMove(next).IllegalMove)
		require.NotNil(t, next.IllegalMove, "clearing should not modify the input")
	})

	t.Run("unknown piece is a protocol error", func(t *testing.T) {
		next, err := u.ApplyEvent(state, domain.MovePlayerEvent{Player: "a", Piece: "p10", From: "c2", To: "c1c2/3"})
		require.True(t, errors.Is(err, domain.ErrUnknownPiece))
		require.True(t, domain.IsProtocolError(err))
		requireSameGame(t, state, next)
	})

	t.Run("cooperative swap is a protocol error", func(t *testing.T) {
		c2, _ := domain.PentaBoard().Field("c2")
		c2j0, _ := domain.PentaBoard().Field("c2j0/1")
		move := domain.CooperativeSwap{
			Piece: domain.NewPlayerPiece("p00", domain.PlayerState{ID: "a"}, domain.Red),
			Other: domain.NewPlayerPiece("p10", domain.PlayerState{ID: "b"}, domain.Red),
			From:  c2,
			To:    c2j0,
		}
		_, err := u.Apply(state, move)
		require.True(t, errors.Is(err, domain.ErrUnsupportedMove))
		_, err = u.ApplyEvent(state, domain.CooperativeSwapEvent{Player: "a", Piece: "p00"})
		require.True(t, domain.IsProtocolError(err))
	})
}

func TestBlackBlocker(t *testing.T) {
	u := newTestUseCase()
	start := startedGame(t, u)

	state := applyLegal(t, u, start, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "j0"})
	require.Equal(t, "j0", state.Positions["p00"])
	require.NotContains(t, state.Positions, "b0")
	require.Equal(t, "b0", state.SelectedBlackPiece)
	require.Equal(t, 0, state.Turn, "turn should wait for the black blocker")
	require.Equal(t, "j0", start.Positions["b0"], "input state should not change")

	t.Run("moving before placing", func(t *testing.T) {
		next := apply(t, u, state, domain.MovePlayerEvent{Player: "a", Piece: "p01", From: "c3", To: "c2c3/3"})
		require.NotNil(t, next.IllegalMove)
		require.Contains(t, next.IllegalMove.Reason, "blocker")
	})

	t.Run("occupied target", func(t *testing.T) {
		next := apply(t, u, state, domain.SetBlackEvent{ID: "b0", To: "c1"})
		require.NotNil(t, next.IllegalMove)
	})

	t.Run("other black blocker", func(t *testing.T) {
		next := apply(t, u, state, domain.SetBlackEvent{ID: "b1", From: ref("j1"), To: "c0c1/2"})
		require.NotNil(t, next.IllegalMove)
	})

	t.Run("without capture", func(t *testing.T) {
		next := apply(t, u, start, domain.SetBlackEvent{ID: "b0", From: ref("j0"), To: "c0c1/2"})
		require.NotNil(t, next.IllegalMove)
	})

	placed := applyLegal(t, u, state, domain.SetBlackEvent{ID: "b0", To: "c0c1/2"})
	require.Equal(t, "c0c1/2", placed.Positions["b0"])
	require.Empty(t, placed.SelectedBlackPiece)
	require.Equal(t, 1, placed.Turn)
	require.Equal(t, "b", placed.CurrentPlayer.ID)

	t.Run("undo restores the start", func(t *testing.T) {
		undone := applyLegal(t, u, placed, undoLast(placed, 2))
		requireSameGame(t, start, undone)
	})

	t.Run("undo must match the history tail", func(t *testing.T) {
		next := apply(t, u, placed, undoLast(state, 1))
		require.NotNil(t, next.IllegalMove)
		requireSameGame(t, placed, next)
	})
}

// scoringGame is a started game where p00 of a stands next to its free goal c0.
func scoringGame(t *testing.T, u useCase) domain.GameState {
	return withPositions(startedGame(t, u), map[string]string{
		"p00": "c0c1/1",
		"p03": "c1c2/2",
		"p13": "c2c3/2",
	})
}

func TestScoring(t *testing.T) {
	u := newTestUseCase()

	t.Run("gray blocker from the pool", func(t *testing.T) {
		start := scoringGame(t, u)
		state := applyLegal(t, u, start, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c0c1/1", To: "c0"})
		require.NotContains(t, state.Positions, "p00")
		require.Equal(t, []domain.Color{domain.Red}, state.ScoringColors["a"])
		require.Equal(t, "g0", state.SelectedGrayPiece)
		require.False(t, state.SelectingGrayPiece)
		require.Equal(t, 0, state.Turn)
		require.Len(t, state.History, len(start.History)+1)
		require.Empty(t, start.ScoringColors["a"], "input state should not change")

		next := apply(t, u, state, domain.SetGreyEvent{ID: "g1", To: "c0c1/2"})
		require.NotNil(t, next.IllegalMove, "only the selected gray blocker can be placed")

		placed := applyLegal(t, u, state, domain.SetGreyEvent{ID: "g0", To: "c0c1/2"})
		require.Equal(t, "c0c1/2", placed.Positions["g0"])
		require.False(t, placed.BlockerPending())
		require.Equal(t, "b", placed.CurrentPlayer.ID)

		undone := applyLegal(t, u, placed, undoLast(placed, 2))
		requireSameGame(t, start, undone)
	})

	t.Run("gray blocker from the board", func(t *testing.T) {
		start := withPositions(scoringGame(t, u), map[string]string{
			"g0": "j0j1/1",
			"g1": "j1j2/1",
			"g2": "j2j3/1",
			"g3": "j3j4/1",
			"g4": "j4j0/1",
		})
		state := applyLegal(t, u, start, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c0c1/1", To: "c0"})
		require.True(t, state.SelectingGrayPiece)
		require.Empty(t, state.SelectedGrayPiece)

		next := apply(t, u, state, domain.SetGreyEvent{ID: "g0", To: "c0c1/2"})
		require.NotNil(t, next.IllegalMove, "a gray blocker on the board has to be given with its source")

		selected := applyLegal(t, u, state, domain.SelectGreyEvent{From: ref("j0j1/1"), ID: ref("g0")})
		require.Equal(t, "g0", selected.SelectedGrayPiece)
		require.NotContains(t, selected.Positions, "g0")

		deselected := applyLegal(t, u, selected, domain.SelectGreyEvent{})
		require.True(t, deselected.SelectingGrayPiece)
		next = apply(t, u, deselected, undoLast(deselected, 1))
		require.NotNil(t, next.IllegalMove, "undoing a deselection is not supported")

		placed := applyLegal(t, u, selected, domain.SetGreyEvent{ID: "g0", To: "c0c1/2"})
		require.Equal(t, "c0c1/2", placed.Positions["g0"])
		require.Equal(t, 1, placed.Turn)

		direct := applyLegal(t, u, state, domain.SetGreyEvent{ID: "g2", From: ref("j2j3/1"), To: "c0c1/2"})
		require.Equal(t, "c0c1/2", direct.Positions["g2"])
		require.False(t, direct.BlockerPending())
	})

	t.Run("taking a gray blocker off the board", func(t *testing.T) {
		start := withPositions(startedGame(t, u), map[string]string{"g0": "c2j0/1"})
		state := applyLegal(t, u, start, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "c2j0/1"})
		require.NotContains(t, state.Positions, "g0")
		require.Empty(t, state.SelectedGrayPiece)
		require.Equal(t, 1, state.Turn)
	})
}

func TestForcedMove(t *testing.T) {
	u := newTestUseCase()
	start := withPositions(startedGame(t, u), map[string]string{
		"p13": "c2c3/2",
		"p10": "c0c1/1",
	})

	state := applyLegal(t, u, start, domain.SwapHostilePiecesEvent{
		Player:      "a",
		OtherPlayer: "b",
		Piece:       "p03",
		OtherPiece:  "p10",
		From:        "c0",
		To:          "c0c1/1",
	})
	require.Len(t, state.History, len(start.History)+2)
	last := state.History[len(state.History)-1].Move
	require.Equal(t, domain.ForcedMovePlayerType, last.Notation().Type())
	require.Equal(t, "c0c1/1", state.Positions["p03"])
	require.NotContains(t, state.Positions, "p10")
	require.Equal(t, []domain.Color{domain.Red}, state.ScoringColors["b"])
	require.Equal(t, "b", state.CurrentPlayer.ID)
	require.Equal(t, "g0", state.SelectedGrayPiece)

	placed := applyLegal(t, u, state, domain.SetGreyEvent{ID: "g0", To: "c0c1/2"})
	require.Equal(t, "a", placed.CurrentPlayer.ID)

	undone := applyLegal(t, u, state, undoLast(state, 2))
	requireSameGame(t, start, undone)
}

func TestWin(t *testing.T) {
	u := newTestUseCase()
	start := withPositions(scoringGame(t, u), map[string]string{"p01": "", "p02": ""})

	state := applyLegal(t, u, start, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c0c1/1", To: "c0"})
	state = applyLegal(t, u, state, domain.SetGreyEvent{ID: "g0", To: "c0c1/2"})
	require.Empty(t, state.Winner, "the round is not complete yet")
	state = applyLegal(t, u, state, domain.MovePlayerEvent{Player: "b", Piece: "p10", From: "c2", To: "c1c2/3"})

	require.Equal(t, "a", state.Winner)
	require.Equal(t, domain.Over, state.Phase())
	last := state.History[len(state.History)-1].Move
	require.Equal(t, domain.Win{Players: []string{"a"}}, last)

	t.Run("no moves after the win", func(t *testing.T) {
		for _, event := range []domain.Event{
			domain.MovePlayerEvent{Player: "b", Piece: "p11", From: "c3", To: "c2c3/3"},
			domain.SwapOwnPieceEvent{Player: "b", Piece: "p11", OtherPiece: "p12", From: "c3", To: "c4"},
			domain.SwapHostilePiecesEvent{
				Player:      "b",
				OtherPlayer: "a",
				Piece:       "p10",
				OtherPiece:  "p03",
				From:        "c1c2/3",
				To:          "c1c2/2",
			},
		} {
			next := apply(t, u, state, event)
			require.NotNil(t, next.IllegalMove, event.Type())
			require.Contains(t, next.IllegalMove.Reason, "game is over", event.Type())
			require.Len(t, next.History, len(state.History))
			require.Equal(t, state.Positions, next.Positions)
		}
	})

	t.Run("undo clears the winner", func(t *testing.T) {
		undone := applyLegal(t, u, state, undoLast(state, 1))
		require.Empty(t, undone.Winner)
		require.Equal(t, domain.Active, undone.Phase())
	})

	t.Run("submitted win is a protocol error", func(t *testing.T) {
		for _, players := range [][]string{{"b"}, {"a"}, {"z"}} {
			next, err := u.ApplyEvent(start, domain.WinEvent{Players: players})
			require.True(t, errors.Is(err, domain.ErrDerivedMove))
			require.True(t, domain.IsProtocolError(err))
			require.Empty(t, next.Winner)
			require.Len(t, next.History, len(start.History))
		}
	})

	t.Run("submitted forced move is a protocol error", func(t *testing.T) {
		s := withPositions(start, map[string]string{"p00": "c0"})
		next, err := u.ApplyEvent(s, domain.ForcedMovePlayerEvent{Player: "a", Piece: "p00", From: "c0", To: "c0"})
		require.True(t, errors.Is(err, domain.ErrDerivedMove))
		require.Equal(t, "c0", next.Positions["p00"])
		require.Len(t, next.History, len(s.History))
	})
}

func TestSelectPlayerPiece(t *testing.T) {
	u := newTestUseCase()
	state := startedGame(t, u)

	selected := applyLegal(t, u, state, domain.SelectPlayerPieceEvent{ID: ref("p00")})
	require.Equal(t, "p00", selected.SelectedPlayerPiece)
	require.Equal(t, 0, selected.Turn)

	next := apply(t, u, state, domain.SelectPlayerPieceEvent{ID: ref("p10")})
	require.NotNil(t, next.IllegalMove)

	deselected := applyLegal(t, u, selected, domain.SelectPlayerPieceEvent{Before: ref("p00")})
	require.Empty(t, deselected.SelectedPlayerPiece)

	moved := applyLegal(t, u, selected, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "c2j0/1"})
	require.Empty(t, moved.SelectedPlayerPiece)
}

func TestReplay(t *testing.T) {
	u := newTestUseCase()
	state := startedGame(t, u)
	state = applyLegal(t, u, state, domain.MovePlayerEvent{Player: "a", Piece: "p00", From: "c2", To: "j0"})
	state = applyLegal(t, u, state, domain.SetBlackEvent{ID: "b0", To: "c0c1/2"})
	state = applyLegal(t, u, state, domain.MovePlayerEvent{Player: "b", Piece: "p10", From: "c2", To: "c2j4/3"})

	data, err := jsoniter.Marshal(state.Notations())
	require.NoError(t, err)
	var notations []domain.Notation
	require.NoError(t, jsoniter.Unmarshal(data, &notations))
	events := make([]domain.Event, 0, len(notations))
	for _, n := range notations {
		events = append(events, n.Event)
	}

	replayed, err := u.Replay(context.Background(), events)
	require.NoError(t, err)
	requireSameGame(t, state, replayed)

	t.Run("diverging history", func(t *testing.T) {
		broken := append(events[:len(events):len(events)],
			domain.MovePlayerEvent{Player: "b", Piece: "p11", From: "c3", To: "c2c3/3"})
		_, err := u.Replay(context.Background(), broken)
		require.True(t, errors.Is(err, domain.ErrReplayMismatch))
	})

	t.Run("recorded win the moves do not produce", func(t *testing.T) {
		forged := []domain.Event{
			domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "a", FigureID: "triangle"}},
			domain.PlayerJoinEvent{Player: domain.PlayerState{ID: "b", FigureID: "square"}},
			domain.InitGameEvent{},
			domain.WinEvent{Players: []string{"b"}},
		}
		_, err := u.Replay(context.Background(), forged)
		require.True(t, errors.Is(err, domain.ErrReplayMismatch))
	})

	t.Run("recorded forced move the moves do not produce", func(t *testing.T) {
		forged := append(events[:len(events):len(events)],
			domain.ForcedMovePlayerEvent{Player: "b", Piece: "p10", From: "c2j4/3", To: "c2j4/3"})
		_, err := u.Replay(context.Background(), forged)
		require.True(t, errors.Is(err, domain.ErrReplayMismatch))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := u.Replay(ctx, events)
		require.True(t, errors.Is(err, context.Canceled))
	})
}
