package game

import (
	"maps"

	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// mutation threads the evolving state through a single call to Apply. Maps of
// the input state are copied before the first write, so the input is never
// modified.
type mutation struct {
	board         *domain.Board
	next          domain.GameState
	delta         []domain.PositionDelta
	ownsPositions bool
	ownsScoring   bool
	logger        *zap.Logger
}

func newMutation(board *domain.Board, state domain.GameState, logger *zap.Logger) *mutation {
	return &mutation{
		board:  board,
		next:   state,
		logger: logger,
	}
}

func (m *mutation) process(move domain.Move) error {
	m.logger.Debug("processing move",
		zap.Int("turn", m.next.Turn),
		zap.String("current player", m.next.CurrentPlayer.ID),
		zap.Any("move", move.Notation()))
	switch move := move.(type) {
	case domain.Undo:
		return m.undo(move)
	case domain.IllegalMove:
		m.next.IllegalMove = &move
		return nil
	case domain.ForcedPlayerMove, domain.Win:
		return errors.WithMessagef(domain.ErrDerivedMove, "'%s'", describe(move))
	}
	return m.commit(move)
}

// commit applies a move and records it. Moves the engine derives on its own
// enter here directly.
func (m *mutation) commit(move domain.Move) error {
	prior := m.next.Frame()
	// prior shares the scoring map, the next write has to copy it
	m.ownsScoring = false
	m.delta = nil
	if err := m.execute(move); err != nil {
		return err
	}
	m.appendHistory(move, prior)
	return m.settle(move)
}

func (m *mutation) execute(move domain.Move) error {
	switch move := move.(type) {
	case domain.MovePlayer:
		return m.movePlayer(move)
	case domain.ForcedPlayerMove:
		return m.forcedPlayerMove(move)
	case domain.SwapOwnPiece:
		return m.swapOwnPiece(move)
	case domain.SwapHostilePieces:
		return m.swapHostilePieces(move)
	case domain.CooperativeSwap:
		return errors.WithMessage(domain.ErrUnsupportedMove, "cooperative swap")
	case domain.SetBlack:
		return m.setBlack(move)
	case domain.SetGrey:
		return m.setGrey(move)
	case domain.SelectGrey:
		return m.selectGrey(move)
	case domain.SelectPlayerPiece:
		return m.selectPlayerPiece(move)
	case domain.PlayerJoin:
		return m.playerJoin(move)
	case domain.InitGame:
		return m.initGame()
	case domain.Win:
		return m.win(move)
	default:
		return errors.WithMessagef(errUnhandledMove, "%T", move)
	}
}

func (m *mutation) position(pieceID string) *domain.Field {
	id, ok := m.next.Positions[pieceID]
	if !ok {
		return nil
	}
	f, _ := m.board.Field(id)
	return f
}

// setPosition moves a piece, nil takes it off the board.
func (m *mutation) setPosition(pieceID string, f *domain.Field) {
	m.track(pieceID)
	fieldID := ""
	if f != nil {
		fieldID = f.ID()
		m.logger.Debug("move piece", zap.String("piece", pieceID), zap.String("field", fieldID))
	} else {
		m.logger.Debug("take piece off the board", zap.String("piece", pieceID))
	}
	m.writePosition(pieceID, fieldID)
}

func (m *mutation) writePosition(pieceID, fieldID string) {
	if !m.ownsPositions {
		positions := maps.Clone(m.next.Positions)
		if positions == nil {
			positions = make(map[string]string)
		}
		m.next.Positions = positions
		m.ownsPositions = true
	}
	if fieldID == "" {
		delete(m.next.Positions, pieceID)
		return
	}
	m.next.Positions[pieceID] = fieldID
}

// track remembers where a piece stood before the current move first touched it.
func (m *mutation) track(pieceID string) {
	for _, d := range m.delta {
		if d.PieceID == pieceID {
			return
		}
	}
	m.delta = append(m.delta, domain.PositionDelta{
		PieceID: pieceID,
		FieldID: m.next.Positions[pieceID],
	})
}

func (m *mutation) setScoringColors(playerID string, colors []domain.Color) {
	if !m.ownsScoring {
		scoring := maps.Clone(m.next.ScoringColors)
		if scoring == nil {
			scoring = make(map[string][]domain.Color)
		}
		m.next.ScoringColors = scoring
		m.ownsScoring = true
	}
	m.next.ScoringColors[playerID] = colors
}

func (m *mutation) appendHistory(move domain.Move, prior domain.Frame) {
	history := m.next.History
	m.next.History = append(history[:len(history):len(history)], domain.HistoryEntry{
		Move:  move,
		Prior: prior,
		Delta: m.delta,
	})
	m.delta = nil
}

func (m *mutation) lastEntry(skip func(domain.Move) bool) domain.Move {
	for i := len(m.next.History) - 1; i >= 0; i-- {
		if move := m.next.History[i].Move; !skip(move) {
			return move
		}
	}
	return nil
}
