package game

import (
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
)

// undo reverts the tail of the history once per given notation. Nothing is run
// after an undo, neither turn advance nor win check.
func (m *mutation) undo(move domain.Undo) error {
	if err := requireMove(len(move.Moves) > 0, "nothing to undo"); err != nil {
		return err
	}
	for _, event := range move.Moves {
		history := m.next.History
		if err := requireMove(len(history) > 0, "cannot undo %s, history is empty", event.Type()); err != nil {
			return err
		}
		toReverse, err := event.AsMove(m.board, m.next)
		if err != nil {
			return errors.WithMessage(err, "resolve move to undo")
		}
		last := history[len(history)-1]
		if err := requireMove(domain.SameMove(last.Move, toReverse),
			"cannot undo move %s, last move is %s", describe(toReverse), describe(last.Move)); err != nil {
			return err
		}
		if sg, ok := last.Move.(domain.SelectGrey); ok && sg.Piece == nil {
			return illegalf("undoing a gray blocker deselection is not supported")
		}
		m.revert(last)
	}
	return nil
}

func (m *mutation) revert(entry domain.HistoryEntry) {
	for i := len(entry.Delta) - 1; i >= 0; i-- {
		m.writePosition(entry.Delta[i].PieceID, entry.Delta[i].FieldID)
	}
	m.next = m.next.Restore(entry.Prior)
	m.ownsScoring = false
	history := m.next.History[:len(m.next.History)-1]
	m.next.History = history[:len(history):len(history)]
}
