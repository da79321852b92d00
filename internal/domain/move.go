package domain

import (
	"reflect"
)

// Move is the closed set of actions the engine understands. Pieces and fields
// are resolved values, see Event for the wire form.
type Move interface {
	Notation() Event
	isMove()
}

// PieceMove is implemented by the moves that move a player piece.
type PieceMove interface {
	Move
	Mover() Piece
	Source() *Field
	Target() *Field
}

type MovePlayer struct {
	Piece Piece
	From  *Field
	To    *Field
}

// ForcedPlayerMove is emitted by the engine for a piece already resting on its
// goal, From and To are the same field.
type ForcedPlayerMove struct {
	Piece Piece
	From  *Field
	To    *Field
}

type SwapOwnPiece struct {
	Piece Piece
	Other Piece
	From  *Field
	To    *Field
}

type SwapHostilePieces struct {
	Piece Piece
	Other Piece
	From  *Field
	To    *Field
}

// CooperativeSwap is reserved for a future rule variant.
type CooperativeSwap struct {
	Piece Piece
	Other Piece
	From  *Field
	To    *Field
}

type SetBlack struct {
	Piece Piece
	From  *Field
	To    *Field
}

type SetGrey struct {
	Piece Piece
	// From is nil when the blocker comes from the pool.
	From *Field
	To   *Field
}

// SelectGrey selects Piece, or deselects the current gray blocker when Piece is nil.
type SelectGrey struct {
	From  *Field
	Piece *Piece
}

type SelectPlayerPiece struct {
	Before *Piece
	Piece  *Piece
}

type PlayerJoin struct {
	Player PlayerState
}

type InitGame struct{}

type Win struct {
	Players []string
}

type IllegalMove struct {
	Reason string
	Move   Move
}

// Undo carries the notation of the moves to revert, newest first.
type Undo struct {
	Moves []Event
}

func (MovePlayer) isMove()        {}
func (ForcedPlayerMove) isMove()  {}
func (SwapOwnPiece) isMove()      {}
func (SwapHostilePieces) isMove() {}
func (CooperativeSwap) isMove()   {}
func (SetBlack) isMove()          {}
func (SetGrey) isMove()           {}
func (SelectGrey) isMove()        {}
func (SelectPlayerPiece) isMove() {}
func (PlayerJoin) isMove()        {}
func (InitGame) isMove()          {}
func (Win) isMove()               {}
func (IllegalMove) isMove()       {}
func (Undo) isMove()              {}

func (m MovePlayer) Mover() Piece          { return m.Piece }
func (m MovePlayer) Source() *Field        { return m.From }
func (m MovePlayer) Target() *Field        { return m.To }
func (m ForcedPlayerMove) Mover() Piece    { return m.Piece }
func (m ForcedPlayerMove) Source() *Field  { return m.From }
func (m ForcedPlayerMove) Target() *Field  { return m.To }
func (m SwapOwnPiece) Mover() Piece        { return m.Piece }
func (m SwapOwnPiece) Source() *Field      { return m.From }
func (m SwapOwnPiece) Target() *Field      { return m.To }
func (m SwapHostilePieces) Mover() Piece   { return m.Piece }
func (m SwapHostilePieces) Source() *Field { return m.From }
func (m SwapHostilePieces) Target() *Field { return m.To }
func (m CooperativeSwap) Mover() Piece     { return m.Piece }
func (m CooperativeSwap) Source() *Field   { return m.From }
func (m CooperativeSwap) Target() *Field   { return m.To }

// AuthorizesBlack reports whether a black blocker may be placed after m.
func AuthorizesBlack(m Move) bool {
	_, ok := m.(MovePlayer)
	return ok
}

// AuthorizesGrey reports whether a gray blocker may be placed after m.
func AuthorizesGrey(m Move) bool {
	switch m.(type) {
	case MovePlayer, ForcedPlayerMove, SwapOwnPiece, SwapHostilePieces, SelectGrey:
		return true
	default:
		return false
	}
}

// SameMove compares two moves by their notation.
func SameMove(a, b Move) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a.Notation(), b.Notation())
}

func (m MovePlayer) Notation() Event {
	return MovePlayerEvent{Player: m.Piece.PlayerID, Piece: m.Piece.ID, From: m.From.ID(), To: m.To.ID()}
}

func (m ForcedPlayerMove) Notation() Event {
	return ForcedMovePlayerEvent{Player: m.Piece.PlayerID, Piece: m.Piece.ID, From: m.From.ID(), To: m.To.ID()}
}

func (m SwapOwnPiece) Notation() Event {
	return SwapOwnPieceEvent{
		Player:     m.Piece.PlayerID,
		Piece:      m.Piece.ID,
		OtherPiece: m.Other.ID,
		From:       m.From.ID(),
		To:         m.To.ID(),
	}
}

func (m SwapHostilePieces) Notation() Event {
	return SwapHostilePiecesEvent{
		Player:      m.Piece.PlayerID,
		OtherPlayer: m.Other.PlayerID,
		Piece:       m.Piece.ID,
		OtherPiece:  m.Other.ID,
		From:        m.From.ID(),
		To:          m.To.ID(),
	}
}

func (m CooperativeSwap) Notation() Event {
	return CooperativeSwapEvent{
		Player:      m.Piece.PlayerID,
		OtherPlayer: m.Other.PlayerID,
		Piece:       m.Piece.ID,
		OtherPiece:  m.Other.ID,
		From:        m.From.ID(),
		To:          m.To.ID(),
	}
}

func (m SetBlack) Notation() Event {
	return SetBlackEvent{ID: m.Piece.ID, From: fieldRef(m.From), To: m.To.ID()}
}

func (m SetGrey) Notation() Event {
	return SetGreyEvent{ID: m.Piece.ID, From: fieldRef(m.From), To: m.To.ID()}
}

func (m SelectGrey) Notation() Event {
	return SelectGreyEvent{From: fieldRef(m.From), ID: pieceRef(m.Piece)}
}

func (m SelectPlayerPiece) Notation() Event {
	return SelectPlayerPieceEvent{Before: pieceRef(m.Before), ID: pieceRef(m.Piece)}
}

func (m PlayerJoin) Notation() Event {
	return PlayerJoinEvent{Player: m.Player}
}

func (InitGame) Notation() Event {
	return InitGameEvent{}
}

func (m Win) Notation() Event {
	return WinEvent{Players: m.Players}
}

func (m IllegalMove) Notation() Event {
	e := IllegalMoveEvent{Message: m.Reason}
	if m.Move != nil {
		e.Move = Notation{Event: m.Move.Notation()}
	}
	return e
}

func (m Undo) Notation() Event {
	moves := make([]Notation, 0, len(m.Moves))
	for _, e := range m.Moves {
		moves = append(moves, Notation{Event: e})
	}
	return UndoEvent{Moves: moves}
}

func fieldRef(f *Field) *string {
	if f == nil {
		return nil
	}
	id := f.ID()
	return &id
}

func pieceRef(p *Piece) *string {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}
