package game

import (
	"fmt"

	"github.com/pkg/errors"
)

var errUnhandledMove = errors.New("unhandled move type")

// illegalMoveError is a rule violation. It never leaves the package: Apply turns
// it into the IllegalMove field of the returned state.
type illegalMoveError struct {
	reason string
}

func (e *illegalMoveError) Error() string {
	return e.reason
}

func illegalf(format string, args ...any) error {
	return &illegalMoveError{reason: fmt.Sprintf(format, args...)}
}

func requireMove(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return illegalf(format, args...)
}
