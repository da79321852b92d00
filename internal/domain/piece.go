package domain

import (
	"fmt"
)

type PieceKind byte

const (
	PlayerPiece = PieceKind(iota)
	BlackBlocker
	GrayBlocker
)

func (k PieceKind) String() string {
	switch k {
	case PlayerPiece:
		return "player"
	case BlackBlocker:
		return "black"
	case GrayBlocker:
		return "gray"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Piece is an immutable value. Where a piece stands is kept in GameState.Positions.
type Piece struct {
	ID       string    `json:"id"`
	Kind     PieceKind `json:"kind"`
	Color    Color     `json:"color"`
	PlayerID string    `json:"playerId,omitempty"`
	FigureID string    `json:"figureId,omitempty"`
}

func NewPlayerPiece(id string, player PlayerState, color Color) Piece {
	return Piece{
		ID:       id,
		Kind:     PlayerPiece,
		Color:    color,
		PlayerID: player.ID,
		FigureID: player.FigureID,
	}
}

func NewBlackBlocker(id string, color Color) Piece {
	return Piece{ID: id, Kind: BlackBlocker, Color: color}
}

func NewGrayBlocker(id string, color Color) Piece {
	return Piece{ID: id, Kind: GrayBlocker, Color: color}
}

func (p Piece) String() string {
	if p.Kind == PlayerPiece {
		return fmt.Sprintf("%s(%s %s of %s)", p.ID, p.Kind, p.Color, p.PlayerID)
	}
	return fmt.Sprintf("%s(%s %s)", p.ID, p.Kind, p.Color)
}

// StartField is the corner a player piece of the given color starts on. Pieces
// never start on their own goal.
func StartField(board *Board, c Color) *Field {
	return board.Corner((c + 2) % ColorCount)
}
