package domain

import (
	"context"
)

// GameHistories maps game uuids to their history in notation. It is what
// servers exchange to keep replicas of each other's games.
type GameHistories map[string][]Notation

type HubUseCase interface {
	CreateGame(ctx context.Context) string
	Handle(ctx context.Context, gameUuid string, client Client) error
	Histories() GameHistories
	SyncStates(ctx context.Context)
	GamesStates() <-chan GameHistories
	ApplyStates(ctx context.Context, states GameHistories) error
}
