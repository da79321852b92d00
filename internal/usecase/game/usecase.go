package game

import (
	"context"
	"reflect"

	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type useCase struct {
	board  *domain.Board
	logger *zap.Logger
}

func New(logger *zap.Logger) useCase {
	return useCase{
		board:  domain.PentaBoard(),
		logger: logger,
	}
}

// Apply returns the state after move. A move that breaks a rule yields the
// input state with IllegalMove set and a nil error; an error is returned only
// when the move cannot be processed at all.
func (u useCase) Apply(state domain.GameState, move domain.Move) (domain.GameState, error) {
	m := newMutation(u.board, state, u.logger)
	err := m.process(move)
	var illegal *illegalMoveError
	switch {
	case errors.As(err, &illegal):
		u.logger.Info("illegal move",
			zap.String("reason", illegal.reason),
			zap.Any("move", move.Notation()))
		state.IllegalMove = &domain.IllegalMove{Reason: illegal.reason, Move: move}
		return state, nil
	case err != nil:
		return state, errors.WithMessage(err, "process move")
	}
	return m.next, nil
}

func (u useCase) ApplyEvent(state domain.GameState, event domain.Event) (domain.GameState, error) {
	move, err := event.AsMove(u.board, state)
	if err != nil {
		return state, errors.WithMessagef(err, "resolve '%s' event", event.Type())
	}
	return u.Apply(state, move)
}

func (u useCase) ClearIllegalMove(state domain.GameState) domain.GameState {
	state.IllegalMove = nil
	return state
}

// Replay rebuilds a game from its recorded history. Entries the engine emits on
// its own, forced moves and wins, are checked against the rebuilt history
// instead of being applied a second time.
func (u useCase) Replay(ctx context.Context, events []domain.Event) (domain.GameState, error) {
	state := domain.NewGameState()
	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return domain.GameState{}, errors.WithMessage(err, "replay interrupted")
		}
		if event == nil {
			return domain.GameState{}, errors.WithMessagef(domain.ErrMalformedEvent, "entry #%d is empty", i)
		}
		if i < len(state.History) {
			if !reflect.DeepEqual(state.History[i].Move.Notation(), event) {
				return domain.GameState{}, errors.WithMessagef(domain.ErrReplayMismatch,
					"entry #%d is '%s', recorded '%s'", i, state.History[i].Move.Notation().Type(), event.Type())
			}
			continue
		}
		switch event.Type() {
		case domain.ForcedMovePlayerType, domain.WinType:
			return domain.GameState{}, errors.WithMessagef(domain.ErrReplayMismatch,
				"entry #%d '%s' was not produced by the preceding moves", i, event.Type())
		}
		next, err := u.ApplyEvent(state, event)
		if err != nil {
			return domain.GameState{}, errors.WithMessagef(err, "replay entry #%d", i)
		}
		if next.IllegalMove != nil {
			return domain.GameState{}, errors.WithMessagef(domain.ErrReplayMismatch,
				"entry #%d rejected: %s", i, next.IllegalMove.Reason)
		}
		state = next
	}
	if len(state.History) != len(events) {
		return domain.GameState{}, errors.WithMessagef(domain.ErrReplayMismatch,
			"rebuilt %d entries from %d recorded", len(state.History), len(events))
	}
	return state, nil
}
