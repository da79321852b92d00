package domain

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type EventType string

const (
	MovePlayerType        = EventType("MovePlayer")
	ForcedMovePlayerType  = EventType("ForcedMovePlayer")
	SwapOwnPieceType      = EventType("SwapOwnPiece")
	SwapHostilePiecesType = EventType("SwapHostilePieces")
	CooperativeSwapType   = EventType("CooperativeSwap")
	SetBlackType          = EventType("SetBlack")
	SetGreyType           = EventType("SetGrey")
	SelectGreyType        = EventType("SelectGrey")
	SelectPlayerPieceType = EventType("SelectPlayerPiece")
	PlayerJoinType        = EventType("PlayerJoin")
	InitGameType          = EventType("InitGame")
	WinType               = EventType("Win")
	IllegalMoveType       = EventType("IllegalMove")
	UndoType              = EventType("Undo")
)

// Event is the serialized notation of a move. It references pieces and fields
// by id and has to be resolved against a state before it can be applied.
type Event interface {
	Type() EventType
	AsMove(board *Board, state GameState) (Move, error)
}

type MovePlayerEvent struct {
	Player string `json:"player"`
	Piece  string `json:"piece"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type ForcedMovePlayerEvent struct {
	Player string `json:"player"`
	Piece  string `json:"piece"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type SwapOwnPieceEvent struct {
	Player     string `json:"player"`
	Piece      string `json:"piece"`
	OtherPiece string `json:"otherPiece"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type SwapHostilePiecesEvent struct {
	Player      string `json:"player"`
	OtherPlayer string `json:"otherPlayer"`
	Piece       string `json:"piece"`
	OtherPiece  string `json:"otherPiece"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type CooperativeSwapEvent struct {
	Player      string `json:"player"`
	OtherPlayer string `json:"otherPlayer"`
	Piece       string `json:"piece"`
	OtherPiece  string `json:"otherPiece"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type SetBlackEvent struct {
	ID   string  `json:"id"`
	From *string `json:"from"`
	To   string  `json:"to"`
}

type SetGreyEvent struct {
	ID   string  `json:"id"`
	From *string `json:"from"`
	To   string  `json:"to"`
}

type SelectGreyEvent struct {
	From *string `json:"from"`
	ID   *string `json:"id"`
}

type SelectPlayerPieceEvent struct {
	Before *string `json:"before"`
	ID     *string `json:"id"`
}

type PlayerJoinEvent struct {
	Player PlayerState `json:"player"`
}

type InitGameEvent struct{}

type WinEvent struct {
	Players []string `json:"players"`
}

type IllegalMoveEvent struct {
	Message string   `json:"message"`
	Move    Notation `json:"move"`
}

type UndoEvent struct {
	Moves []Notation `json:"moves"`
}

func (MovePlayerEvent) Type() EventType        { return MovePlayerType }
func (ForcedMovePlayerEvent) Type() EventType  { return ForcedMovePlayerType }
func (SwapOwnPieceEvent) Type() EventType      { return SwapOwnPieceType }
func (SwapHostilePiecesEvent) Type() EventType { return SwapHostilePiecesType }
func (CooperativeSwapEvent) Type() EventType   { return CooperativeSwapType }
func (SetBlackEvent) Type() EventType          { return SetBlackType }
func (SetGreyEvent) Type() EventType           { return SetGreyType }
func (SelectGreyEvent) Type() EventType        { return SelectGreyType }
func (SelectPlayerPieceEvent) Type() EventType { return SelectPlayerPieceType }
func (PlayerJoinEvent) Type() EventType        { return PlayerJoinType }
func (InitGameEvent) Type() EventType          { return InitGameType }
func (WinEvent) Type() EventType               { return WinType }
func (IllegalMoveEvent) Type() EventType       { return IllegalMoveType }
func (UndoEvent) Type() EventType              { return UndoType }

func (e MovePlayerEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, from, to, err := resolvePieceMove(board, state, e.Player, e.Piece, e.From, e.To)
	if err != nil {
		return nil, err
	}
	return MovePlayer{Piece: piece, From: from, To: to}, nil
}

func (e ForcedMovePlayerEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, from, to, err := resolvePieceMove(board, state, e.Player, e.Piece, e.From, e.To)
	if err != nil {
		return nil, err
	}
	return ForcedPlayerMove{Piece: piece, From: from, To: to}, nil
}

func (e SwapOwnPieceEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, from, to, err := resolvePieceMove(board, state, e.Player, e.Piece, e.From, e.To)
	if err != nil {
		return nil, err
	}
	other, err := playerPiece(state, e.Player, e.OtherPiece)
	if err != nil {
		return nil, err
	}
	return SwapOwnPiece{Piece: piece, Other: other, From: from, To: to}, nil
}

func (e SwapHostilePiecesEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, from, to, err := resolvePieceMove(board, state, e.Player, e.Piece, e.From, e.To)
	if err != nil {
		return nil, err
	}
	other, err := playerPiece(state, e.OtherPlayer, e.OtherPiece)
	if err != nil {
		return nil, err
	}
	return SwapHostilePieces{Piece: piece, Other: other, From: from, To: to}, nil
}

func (CooperativeSwapEvent) AsMove(*Board, GameState) (Move, error) {
	return nil, errors.WithMessage(ErrUnsupportedMove, "cooperative swap")
}

func (e SetBlackEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, err := blocker(state, BlackBlocker, e.ID)
	if err != nil {
		return nil, err
	}
	from, err := optionalField(board, e.From)
	if err != nil {
		return nil, err
	}
	to, err := field(board, e.To)
	if err != nil {
		return nil, err
	}
	return SetBlack{Piece: piece, From: from, To: to}, nil
}

func (e SetGreyEvent) AsMove(board *Board, state GameState) (Move, error) {
	piece, err := blocker(state, GrayBlocker, e.ID)
	if err != nil {
		return nil, err
	}
	from, err := optionalField(board, e.From)
	if err != nil {
		return nil, err
	}
	to, err := field(board, e.To)
	if err != nil {
		return nil, err
	}
	return SetGrey{Piece: piece, From: from, To: to}, nil
}

func (e SelectGreyEvent) AsMove(board *Board, state GameState) (Move, error) {
	from, err := optionalField(board, e.From)
	if err != nil {
		return nil, err
	}
	move := SelectGrey{From: from}
	if e.ID != nil {
		piece, err := blocker(state, GrayBlocker, *e.ID)
		if err != nil {
			return nil, err
		}
		move.Piece = &piece
	}
	return move, nil
}

func (e SelectPlayerPieceEvent) AsMove(_ *Board, state GameState) (Move, error) {
	var move SelectPlayerPiece
	if e.Before != nil {
		before, err := playerPiece(state, "", *e.Before)
		if err != nil {
			return nil, err
		}
		move.Before = &before
	}
	if e.ID != nil {
		piece, err := playerPiece(state, "", *e.ID)
		if err != nil {
			return nil, err
		}
		move.Piece = &piece
	}
	return move, nil
}

func (e PlayerJoinEvent) AsMove(*Board, GameState) (Move, error) {
	if e.Player.ID == "" {
		return nil, errors.WithMessage(ErrMalformedEvent, "empty player id")
	}
	return PlayerJoin{Player: e.Player}, nil
}

func (InitGameEvent) AsMove(*Board, GameState) (Move, error) {
	return InitGame{}, nil
}

func (e WinEvent) AsMove(*Board, GameState) (Move, error) {
	return Win{Players: e.Players}, nil
}

func (e IllegalMoveEvent) AsMove(board *Board, state GameState) (Move, error) {
	move := IllegalMove{Reason: e.Message}
	if e.Move.Event != nil {
		inner, err := e.Move.Event.AsMove(board, state)
		if err != nil {
			return nil, errors.WithMessage(err, "resolve rejected move")
		}
		move.Move = inner
	}
	return move, nil
}

func (e UndoEvent) AsMove(*Board, GameState) (Move, error) {
	moves := make([]Event, 0, len(e.Moves))
	for _, n := range e.Moves {
		if n.Event == nil {
			return nil, errors.WithMessage(ErrMalformedEvent, "empty undo entry")
		}
		moves = append(moves, n.Event)
	}
	return Undo{Moves: moves}, nil
}

func resolvePieceMove(board *Board, state GameState, playerID, pieceID, fromID, toID string) (Piece, *Field, *Field, error) {
	piece, err := playerPiece(state, playerID, pieceID)
	if err != nil {
		return Piece{}, nil, nil, err
	}
	from, err := field(board, fromID)
	if err != nil {
		return Piece{}, nil, nil, err
	}
	to, err := field(board, toID)
	if err != nil {
		return Piece{}, nil, nil, err
	}
	return piece, from, to, nil
}

// playerPiece looks up a player piece, playerID is not checked when empty.
func playerPiece(state GameState, playerID, id string) (Piece, error) {
	piece, ok := state.Piece(id)
	if !ok || piece.Kind != PlayerPiece || (playerID != "" && piece.PlayerID != playerID) {
		return Piece{}, errors.WithMessagef(ErrUnknownPiece, "player piece '%s' of '%s'", id, playerID)
	}
	return piece, nil
}

func blocker(state GameState, kind PieceKind, id string) (Piece, error) {
	piece, ok := state.Piece(id)
	if !ok || piece.Kind != kind {
		return Piece{}, errors.WithMessagef(ErrUnknownPiece, "%s blocker '%s'", kind, id)
	}
	return piece, nil
}

func field(board *Board, id string) (*Field, error) {
	f, ok := board.Field(id)
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownField, "field '%s'", id)
	}
	return f, nil
}

func optionalField(board *Board, id *string) (*Field, error) {
	if id == nil {
		return nil, nil
	}
	return field(board, *id)
}

// Notation wraps an event for transport as {"type": ..., "payload": ...}.
type Notation struct {
	Event Event
}

type notationEnvelope struct {
	Type    EventType           `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

func (n Notation) MarshalJSON() ([]byte, error) {
	if n.Event == nil {
		return []byte("null"), nil
	}
	payload, err := jsoniter.Marshal(n.Event)
	if err != nil {
		return nil, errors.WithMessagef(err, "marshal '%s' payload", n.Event.Type())
	}
	return jsoniter.Marshal(notationEnvelope{Type: n.Event.Type(), Payload: payload})
}

func (n *Notation) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Event = nil
		return nil
	}
	var envelope notationEnvelope
	if err := jsoniter.Unmarshal(data, &envelope); err != nil {
		return errors.WithMessage(err, "unmarshal notation envelope")
	}
	event, err := decodeEvent(envelope.Type, envelope.Payload)
	if err != nil {
		return err
	}
	n.Event = event
	return nil
}

func decodeEvent(t EventType, payload jsoniter.RawMessage) (Event, error) {
	switch t {
	case MovePlayerType:
		return decodePayload[MovePlayerEvent](payload)
	case ForcedMovePlayerType:
		return decodePayload[ForcedMovePlayerEvent](payload)
	case SwapOwnPieceType:
		return decodePayload[SwapOwnPieceEvent](payload)
	case SwapHostilePiecesType:
		return decodePayload[SwapHostilePiecesEvent](payload)
	case CooperativeSwapType:
		return decodePayload[CooperativeSwapEvent](payload)
	case SetBlackType:
		return decodePayload[SetBlackEvent](payload)
	case SetGreyType:
		return decodePayload[SetGreyEvent](payload)
	case SelectGreyType:
		return decodePayload[SelectGreyEvent](payload)
	case SelectPlayerPieceType:
		return decodePayload[SelectPlayerPieceEvent](payload)
	case PlayerJoinType:
		return decodePayload[PlayerJoinEvent](payload)
	case InitGameType:
		return InitGameEvent{}, nil
	case WinType:
		return decodePayload[WinEvent](payload)
	case IllegalMoveType:
		return decodePayload[IllegalMoveEvent](payload)
	case UndoType:
		return decodePayload[UndoEvent](payload)
	default:
		return nil, errors.WithMessagef(ErrMalformedEvent, "unknown event type '%s'", t)
	}
}

func decodePayload[T Event](payload jsoniter.RawMessage) (Event, error) {
	var event T
	if len(payload) == 0 {
		return nil, errors.WithMessagef(ErrMalformedEvent, "empty '%s' payload", event.Type())
	}
	if err := jsoniter.Unmarshal(payload, &event); err != nil {
		return nil, errors.WithMessagef(ErrMalformedEvent, "unmarshal '%s' payload: %v", event.Type(), err)
	}
	return event, nil
}
