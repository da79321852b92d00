package hub

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownGame       = errors.New("unknown game")
	errUnexpectedMessage = errors.New("unexpected message type")
)
