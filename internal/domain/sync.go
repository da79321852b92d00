package domain

import (
	"context"
)

type HealthCheckResponse struct {
	ServerName string            `json:"serverName"`
	Games      int64             `json:"games"`
	Peers      map[string]string `json:"peers"`
}

type SyncUseCase interface {
	Sync(ctx context.Context, statesChan <-chan GameHistories)
	CheckPeersHealth(ctx context.Context)
	Bootstrap(ctx context.Context) (GameHistories, error)
	// Addresses maps the host of every peer to the address it is synced with.
	Addresses() map[string]string
}

type SyncRepository interface {
	Sync(ctx context.Context, addr string, states GameHistories) error
	HealthCheck(ctx context.Context, addr string) (*HealthCheckResponse, error)
	FetchGames(ctx context.Context, addr string) (GameHistories, error)
}
