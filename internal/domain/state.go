package domain

import (
	"fmt"
)

// GameState is replaced wholesale on every transition. Its maps and slices are
// shared between successive states and must never be written to in place.
type GameState struct {
	Players       []PlayerState
	CurrentPlayer PlayerState
	Turn          int
	GameStarted   bool
	// Winner holds the comma separated ids of the winning players.
	Winner        string
	Figures       []Piece
	Positions     map[string]string
	ScoringColors map[string][]Color
	History       []HistoryEntry

	SelectedPlayerPiece string
	SelectedBlackPiece  string
	SelectedGrayPiece   string
	// SelectingGrayPiece is set when the pool is empty and a gray blocker has
	// to be taken from the board.
	SelectingGrayPiece bool

	IllegalMove *IllegalMove
}

// HistoryEntry is an applied move together with what is needed to invert it.
type HistoryEntry struct {
	Move  Move
	Prior Frame
	Delta []PositionDelta
}

// Frame is everything but positions and history, captured before a move is applied.
type Frame struct {
	Players             []PlayerState
	Figures             []Piece
	GameStarted         bool
	Turn                int
	CurrentPlayer       PlayerState
	Winner              string
	ScoringColors       map[string][]Color
	SelectedPlayerPiece string
	SelectedBlackPiece  string
	SelectedGrayPiece   string
	SelectingGrayPiece  bool
}

// PositionDelta is the position a piece had before a move touched it.
type PositionDelta struct {
	PieceID string
	// FieldID is empty when the piece was off-board.
	FieldID string
}

type Phase byte

const (
	Joining = Phase(iota)
	Active
	Over
)

func (p Phase) String() string {
	switch p {
	case Joining:
		return "joining"
	case Active:
		return "active"
	default:
		return "over"
	}
}

const (
	blockerCount    = ColorCount
	piecesPerPlayer = ColorCount
)

// NewGameState returns the empty state every game and every replay starts from:
// black blockers on the joints and gray blockers in the pool.
func NewGameState() GameState {
	board := PentaBoard()
	figures := make([]Piece, 0, 2*blockerCount)
	positions := make(map[string]string, blockerCount)
	for i := 0; i < blockerCount; i++ {
		black := NewBlackBlocker(fmt.Sprintf("b%d", i), Color(i))
		figures = append(figures, black)
		positions[black.ID] = board.Joint(Color(i)).ID()
	}
	for i := 0; i < blockerCount; i++ {
		figures = append(figures, NewGrayBlocker(fmt.Sprintf("g%d", i), Color(i)))
	}
	return GameState{
		Figures:       figures,
		Positions:     positions,
		ScoringColors: map[string][]Color{},
	}
}

func (s GameState) Phase() Phase {
	switch {
	case s.Winner != "":
		return Over
	case s.GameStarted:
		return Active
	default:
		return Joining
	}
}

func (s GameState) Frame() Frame {
	return Frame{
		Players:             s.Players,
		Figures:             s.Figures,
		GameStarted:         s.GameStarted,
		Turn:                s.Turn,
		CurrentPlayer:       s.CurrentPlayer,
		Winner:              s.Winner,
		ScoringColors:       s.ScoringColors,
		SelectedPlayerPiece: s.SelectedPlayerPiece,
		SelectedBlackPiece:  s.SelectedBlackPiece,
		SelectedGrayPiece:   s.SelectedGrayPiece,
		SelectingGrayPiece:  s.SelectingGrayPiece,
	}
}

// BlockerPending reports whether a blocker placement has to happen before the
// turn can pass.
func (s GameState) BlockerPending() bool {
	return s.SelectedBlackPiece != "" || s.SelectedGrayPiece != "" || s.SelectingGrayPiece
}

// Restore puts the bookkeeping of f back into s.
func (s GameState) Restore(f Frame) GameState {
	s.Players = f.Players
	s.Figures = f.Figures
	s.GameStarted = f.GameStarted
	s.Turn = f.Turn
	s.CurrentPlayer = f.CurrentPlayer
	s.Winner = f.Winner
	s.ScoringColors = f.ScoringColors
	s.SelectedPlayerPiece = f.SelectedPlayerPiece
	s.SelectedBlackPiece = f.SelectedBlackPiece
	s.SelectedGrayPiece = f.SelectedGrayPiece
	s.SelectingGrayPiece = f.SelectingGrayPiece
	return s
}

func (s GameState) Piece(id string) (Piece, bool) {
	for _, p := range s.Figures {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}

func (s GameState) PlayerPieces(playerID string) []Piece {
	pieces := make([]Piece, 0, piecesPerPlayer)
	for _, p := range s.Figures {
		if p.Kind == PlayerPiece && p.PlayerID == playerID {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Occupants returns the pieces standing on the field with the given canonical id.
func (s GameState) Occupants(fieldID string) []Piece {
	var pieces []Piece
	for _, p := range s.Figures {
		if pos, ok := s.Positions[p.ID]; ok && pos == fieldID {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func (s GameState) HasPlayer(id string) bool {
	for _, p := range s.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Notations returns the history in wire notation.
func (s GameState) Notations() []Notation {
	notations := make([]Notation, 0, len(s.History))
	for _, entry := range s.History {
		notations = append(notations, Notation{Event: entry.Move.Notation()})
	}
	return notations
}
