package domain

import (
	"context"
)

// GameUseCase is the rules engine. It is a pure function of state and move and
// must be called by one writer per game at a time.
type GameUseCase interface {
	Apply(state GameState, move Move) (GameState, error)
	ApplyEvent(state GameState, event Event) (GameState, error)
	ClearIllegalMove(state GameState) GameState
	Replay(ctx context.Context, events []Event) (GameState, error)
}
