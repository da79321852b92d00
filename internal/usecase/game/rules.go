package game

import (
	"fmt"
	"strings"

	"github.com/kiryu-dev/penta/internal/domain"
	"go.uber.org/zap"
)

func (m *mutation) requireStarted() error {
	return requireMove(m.next.GameStarted, "game is not started yet")
}

// requireTurn checks what every move of a player piece needs: a running game,
// the piece of the current player and no blocker waiting to be placed.
func (m *mutation) requireTurn(piece domain.Piece) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if err := requireMove(m.next.Winner == "", "game is over, won by %s", m.next.Winner); err != nil {
		return err
	}
	if err := requireMove(piece.PlayerID == m.next.CurrentPlayer.ID,
		"move is not from currentPlayer: %s", m.next.CurrentPlayer.ID); err != nil {
		return err
	}
	return requireMove(!m.next.BlockerPending(), "a blocker has to be placed first")
}

func (m *mutation) requireAt(piece domain.Piece, f *domain.Field) error {
	return requireMove(m.position(piece.ID) == f, "piece %s is not on expected position %s", piece.ID, f)
}

func (m *mutation) requirePath(from, to *domain.Field) error {
	if err := requireMove(from != to, "source and target are the same field %s", from); err != nil {
		return err
	}
	return requireMove(CanMove(m.board, m.next.Positions, from, to), "no path between %s and %s", from, to)
}

func (m *mutation) movePlayer(move domain.MovePlayer) error {
	if err := m.requireTurn(move.Piece); err != nil {
		return err
	}
	if err := m.requireAt(move.Piece, move.From); err != nil {
		return err
	}
	if err := m.requirePath(move.From, move.To); err != nil {
		return err
	}
	occupants := m.next.Occupants(move.To.ID())
	if err := requireMove(len(occupants) <= 1, "multiple pieces on target field %s", move.To); err != nil {
		return err
	}
	if len(occupants) == 1 {
		target := occupants[0]
		switch target.Kind {
		case domain.GrayBlocker:
			m.logger.Debug("taking gray blocker off the board", zap.String("piece", target.ID))
			m.setPosition(target.ID, nil)
		case domain.BlackBlocker:
			m.logger.Debug("holding black blocker for repositioning", zap.String("piece", target.ID))
			m.setPosition(target.ID, nil)
			m.next.SelectedBlackPiece = target.ID
		default:
			return illegalf("cannot move onto piece %s of type %s", target.ID, target.Kind)
		}
	}
	m.setPosition(move.Piece.ID, move.To)
	m.score(move)
	return nil
}

func (m *mutation) forcedPlayerMove(move domain.ForcedPlayerMove) error {
	if err := m.requireTurn(move.Piece); err != nil {
		return err
	}
	if err := m.requireAt(move.Piece, move.From); err != nil {
		return err
	}
	if err := requireMove(move.From == move.To && move.From.IsGoalFor(move.Piece.Color),
		"forced player move cannot happen"); err != nil {
		return err
	}
	m.score(move)
	return nil
}

func (m *mutation) swapOwnPiece(move domain.SwapOwnPiece) error {
	if err := m.requireTurn(move.Piece); err != nil {
		return err
	}
	if err := m.requirePath(move.From, move.To); err != nil {
		return err
	}
	if err := m.requireAt(move.Piece, move.From); err != nil {
		return err
	}
	if err := requireMove(move.Other.PlayerID == m.next.CurrentPlayer.ID,
		"piece %s is not owned by current player %s", move.Other.ID, m.next.CurrentPlayer.ID); err != nil {
		return err
	}
	if err := m.requireAt(move.Other, move.To); err != nil {
		return err
	}
	m.swap(move.Piece, move.Other, move.From, move.To)
	m.score(move)
	return nil
}

func (m *mutation) swapHostilePieces(move domain.SwapHostilePieces) error {
	if err := m.requireTurn(move.Piece); err != nil {
		return err
	}
	if err := m.requirePath(move.From, move.To); err != nil {
		return err
	}
	if err := m.requireAt(move.Piece, move.From); err != nil {
		return err
	}
	if err := requireMove(move.Other.PlayerID != m.next.CurrentPlayer.ID,
		"piece %s is owned by current player %s", move.Other.ID, m.next.CurrentPlayer.ID); err != nil {
		return err
	}
	if err := m.requireAt(move.Other, move.To); err != nil {
		return err
	}
	last := m.lastEntry(func(prev domain.Move) bool {
		pm, ok := prev.(domain.PieceMove)
		return !ok || pm.Mover().PlayerID != move.Piece.PlayerID
	})
	if err := requireMove(!domain.SameMove(last, move), "repeating move %s is illegal", describe(move)); err != nil {
		return err
	}
	m.swap(move.Piece, move.Other, move.From, move.To)
	m.score(move)
	return nil
}

func (m *mutation) swap(piece, other domain.Piece, from, to *domain.Field) {
	m.setPosition(piece.ID, to)
	m.setPosition(other.ID, from)
}

func (m *mutation) setBlack(move domain.SetBlack) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if err := requireMove(len(m.next.Occupants(move.To.ID())) == 0,
		"target position not empty: %s", move.To); err != nil {
		return err
	}
	pos := m.position(move.Piece.ID)
	if err := requireMove(pos == nil || pos == move.From,
		"illegal source position of %s", move.Piece.ID); err != nil {
		return err
	}
	if err := requireMove(m.next.SelectedBlackPiece == move.Piece.ID,
		"black blocker %s is not held for repositioning", move.Piece.ID); err != nil {
		return err
	}
	last := m.lastEntry(func(prev domain.Move) bool {
		_, ok := prev.(domain.SetGrey)
		return ok
	})
	if err := requireMove(last != nil && domain.AuthorizesBlack(last),
		"last move was not the expected move type: %s", describe(last)); err != nil {
		return err
	}
	m.setPosition(move.Piece.ID, move.To)
	m.next.SelectedBlackPiece = ""
	return nil
}

func (m *mutation) setGrey(move domain.SetGrey) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if err := requireMove(len(m.next.Occupants(move.To.ID())) == 0,
		"target position not empty: %s", move.To); err != nil {
		return err
	}
	if err := requireMove(m.position(move.Piece.ID) == move.From,
		"gray blocker %s is not on source position %s", move.Piece.ID, fieldName(move.From)); err != nil {
		return err
	}
	if m.next.SelectingGrayPiece {
		if err := requireMove(move.From != nil, "source is null"); err != nil {
			return err
		}
	} else {
		if err := requireMove(m.next.SelectedGrayPiece == move.Piece.ID,
			"piece %s is not the same as selected gray piece: %s",
			move.Piece.ID, m.next.SelectedGrayPiece); err != nil {
			return err
		}
	}
	last := m.lastEntry(func(prev domain.Move) bool {
		_, ok := prev.(domain.SetBlack)
		return ok
	})
	if err := requireMove(last != nil && domain.AuthorizesGrey(last),
		"last move was not the expected move type: %s", describe(last)); err != nil {
		return err
	}
	m.setPosition(move.Piece.ID, move.To)
	m.next.SelectedGrayPiece = ""
	m.next.SelectingGrayPiece = false
	return nil
}

func (m *mutation) selectGrey(move domain.SelectGrey) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if move.Piece == nil {
		if err := requireMove(m.next.SelectedGrayPiece != "",
			"cannot deselect, since no grey piece is selected"); err != nil {
			return err
		}
		m.next.SelectedGrayPiece = ""
		m.next.SelectingGrayPiece = true
		return nil
	}
	if err := requireMove(m.next.SelectingGrayPiece || m.next.SelectedGrayPiece != "",
		"no gray blocker has to be placed"); err != nil {
		return err
	}
	if err := requireMove(m.position(move.Piece.ID) == move.From,
		"gray blocker %s is not on %s", move.Piece.ID, fieldName(move.From)); err != nil {
		return err
	}
	m.next.SelectedGrayPiece = move.Piece.ID
	m.next.SelectingGrayPiece = false
	if move.From != nil {
		m.setPosition(move.Piece.ID, nil)
	}
	return nil
}

func (m *mutation) selectPlayerPiece(move domain.SelectPlayerPiece) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if move.Piece == nil {
		if err := requireMove(m.next.SelectedPlayerPiece != "",
			"cannot deselect because there is no piece selected"); err != nil {
			return err
		}
		m.next.SelectedPlayerPiece = ""
		return nil
	}
	if err := requireMove(move.Piece.PlayerID == m.next.CurrentPlayer.ID,
		"selected piece %s is not owned by current player %s", move.Piece.ID, m.next.CurrentPlayer.ID); err != nil {
		return err
	}
	m.next.SelectedPlayerPiece = move.Piece.ID
	return nil
}

// playerJoin adds the player and rebuilds the pieces of all players on their
// start corners. Blockers are kept where they are.
func (m *mutation) playerJoin(move domain.PlayerJoin) error {
	if err := requireMove(!m.next.GameStarted, "game is already started"); err != nil {
		return err
	}
	if err := requireMove(!m.next.HasPlayer(move.Player.ID), "player already joined"); err != nil {
		return err
	}
	players := append(m.next.Players[:len(m.next.Players):len(m.next.Players)], move.Player)
	figures := make([]domain.Piece, 0, len(m.next.Figures)+domain.ColorCount)
	for _, piece := range m.next.Figures {
		if piece.Kind != domain.PlayerPiece {
			figures = append(figures, piece)
		}
	}
	for i, player := range players {
		for c := 0; c < domain.ColorCount; c++ {
			piece := domain.NewPlayerPiece(fmt.Sprintf("p%d%d", i, c), player, domain.Color(c))
			figures = append(figures, piece)
			m.setPosition(piece.ID, domain.StartField(m.board, piece.Color))
		}
	}
	m.next.Players = players
	m.next.Figures = figures
	return nil
}

func (m *mutation) initGame() error {
	if err := requireMove(!m.next.GameStarted, "game is already started"); err != nil {
		return err
	}
	if err := requireMove(len(m.next.Players) > 0, "there is no players"); err != nil {
		return err
	}
	m.next.GameStarted = true
	m.next.Turn = 0
	m.next.CurrentPlayer = m.next.Players[0]
	return nil
}

func (m *mutation) win(move domain.Win) error {
	if err := m.requireStarted(); err != nil {
		return err
	}
	if err := requireMove(len(move.Players) > 0, "no winners given"); err != nil {
		return err
	}
	for _, id := range move.Players {
		if err := requireMove(m.next.HasPlayer(id), "unknown winner %s", id); err != nil {
			return err
		}
	}
	m.next.Winner = strings.Join(move.Players, ", ")
	return nil
}

func describe(move domain.Move) string {
	if move == nil {
		return "none"
	}
	return string(move.Notation().Type())
}

func fieldName(f *domain.Field) string {
	if f == nil {
		return "off-board"
	}
	return f.ID()
}
