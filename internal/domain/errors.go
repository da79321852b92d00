package domain

import (
	"github.com/pkg/errors"
)

// Protocol errors: the event stream is out of sync with the state it is
// applied to. Rule violations are never reported this way, see IllegalMove.
var (
	ErrUnknownPiece    = errors.New("unknown piece")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnsupportedMove = errors.New("unsupported move")
	ErrMalformedEvent  = errors.New("malformed event")
	ErrDerivedMove     = errors.New("move is emitted by the engine only")
	ErrReplayMismatch  = errors.New("replay does not reproduce history")
)

func IsProtocolError(err error) bool {
	for _, target := range []error{
		ErrUnknownPiece,
		ErrUnknownField,
		ErrUnsupportedMove,
		ErrMalformedEvent,
		ErrDerivedMove,
		ErrReplayMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
