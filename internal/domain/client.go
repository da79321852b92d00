package domain

import (
	"github.com/pkg/errors"
)

var ErrConnectionClosed = errors.New("connection closed")

const (
	ClientUuidHeader = "X-Client-Key"
	GameIdParam      = "id"
)

type messageType byte

const (
	SubmitEvent = messageType(iota)
	ClearIllegalMove
	StateUpdate
	ProtocolError
)

type Message struct {
	Type    messageType
	Payload any
}

type SubmitEventPayload struct {
	Event Notation `json:"event"`
}

type StateUpdatePayload struct {
	GameUuid string    `json:"gameId"`
	State    StateView `json:"state"`
}

type ProtocolErrorPayload struct {
	Error string `json:"error"`
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
