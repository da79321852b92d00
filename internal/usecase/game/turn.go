package game

import (
	"github.com/kiryu-dev/penta/internal/domain"
	"go.uber.org/zap"
)

const winningScore = 3

// score takes the moved piece off the board when it landed on its goal and
// starts the gray blocker placement.
func (m *mutation) score(move domain.PieceMove) {
	m.next.SelectedPlayerPiece = ""
	piece, target := move.Mover(), move.Target()
	if !target.IsGoalFor(piece.Color) {
		return
	}
	m.setPosition(piece.ID, nil)

	var colors []domain.Color
	for _, p := range m.next.PlayerPieces(piece.PlayerID) {
		if _, onBoard := m.next.Positions[p.ID]; !onBoard {
			colors = append(colors, p.Color)
		}
	}
	m.setScoringColors(piece.PlayerID, colors)

	for _, p := range m.next.Figures {
		if _, onBoard := m.next.Positions[p.ID]; p.Kind == domain.GrayBlocker && !onBoard {
			m.next.SelectedGrayPiece = p.ID
			m.next.SelectingGrayPiece = false
			m.logger.Debug("selected gray blocker from the pool", zap.String("piece", p.ID))
			return
		}
	}
	m.logger.Debug("gray pool is empty, one has to be taken from the board")
	m.next.SelectedGrayPiece = ""
	m.next.SelectingGrayPiece = true
}

// settle runs the bookkeeping after an applied move.
func (m *mutation) settle(move domain.Move) error {
	if err := m.checkWin(); err != nil {
		return err
	}
	m.advanceTurn(move)
	return m.forceMoves()
}

func (m *mutation) advanceTurn(move domain.Move) {
	switch move.(type) {
	case domain.InitGame, domain.PlayerJoin, domain.Win, domain.SelectPlayerPiece, domain.SelectGrey:
		return
	}
	if !m.next.GameStarted || m.next.Winner != "" || m.next.BlockerPending() {
		return
	}
	m.next.Turn++
	m.next.CurrentPlayer = m.next.Players[m.next.Turn%len(m.next.Players)]
	m.logger.Debug("next turn",
		zap.Int("turn", m.next.Turn),
		zap.String("current player", m.next.CurrentPlayer.ID))
}

// forceMoves scores the pieces of the current player that already rest on
// their goal, one at a time while no blocker placement is pending.
func (m *mutation) forceMoves() error {
	if !m.next.GameStarted || m.next.Winner != "" {
		return nil
	}
	for _, piece := range m.next.PlayerPieces(m.next.CurrentPlayer.ID) {
		if m.next.BlockerPending() {
			return nil
		}
		f := m.position(piece.ID)
		if f == nil || !f.IsGoalFor(piece.Color) {
			continue
		}
		if err := m.commit(domain.ForcedPlayerMove{Piece: piece, From: f, To: f}); err != nil {
			return err
		}
	}
	return nil
}

// checkWin runs after the last player of a round moved.
func (m *mutation) checkWin() error {
	players := m.next.Players
	if !m.next.GameStarted || m.next.Winner != "" || len(players) == 0 {
		return nil
	}
	if m.next.Turn%len(players) != len(players)-1 || m.next.BlockerPending() {
		return nil
	}
	var winners []string
	for _, player := range players {
		scored := 0
		for _, p := range m.next.PlayerPieces(player.ID) {
			if _, onBoard := m.next.Positions[p.ID]; !onBoard {
				scored++
			}
		}
		if scored >= winningScore {
			winners = append(winners, player.ID)
		}
	}
	if len(winners) == 0 {
		return nil
	}
	m.logger.Info("game won", zap.Strings("winners", winners))
	return m.commit(domain.Win{Players: winners})
}
