package synchronizer

import (
	"context"
	"fmt"
	"time"

	"github.com/kiryu-dev/penta/internal/config"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var ErrNoPeerAvailable = errors.New("no peer available")

const (
	httpPrefix        = "http://"
	healthCheckPeriod = 5 * time.Second
)

type peer struct {
	addr  string
	alive *atomic.Bool
}

type useCase struct {
	repo       domain.SyncRepository
	peers      map[string]peer
	serverName string
	logger     *zap.Logger
}

func New(repo domain.SyncRepository, serverName string, cfg []config.ServerConfig, logger *zap.Logger) *useCase {
	peers := make(map[string]peer)
	for _, srv := range cfg {
		if srv.Host == serverName {
			continue
		}
		peers[srv.Host] = peer{
			addr:  fmt.Sprintf("%s%s:%d", httpPrefix, srv.Host, srv.Port),
			alive: atomic.NewBool(true),
		}
	}
	logger.Info("defined servers", zap.String("server name", serverName), zap.Any("peers", peers))
	return &useCase{
		repo:       repo,
		peers:      peers,
		serverName: serverName,
		logger:     logger,
	}
}

// Sync pushes every received snapshot of game histories to the live peers.
func (u *useCase) Sync(ctx context.Context, statesChan <-chan domain.GameHistories) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-statesChan:
			u.logger.Info("starting sync games states...", zap.Int("games", len(v)))
			for host, p := range u.peers {
				if !p.alive.Load() {
					u.logger.Debug("skip dead peer", zap.String("host", host))
					continue
				}
				if err := u.repo.Sync(ctx, p.addr, v); err != nil {
					u.logger.Warn(err.Error(), zap.String("host", host))
				}
			}
		}
	}
}

func (u *useCase) CheckPeersHealth(ctx context.Context) {
	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.checkPeers(ctx)
		}
	}
}

func (u *useCase) checkPeers(ctx context.Context) {
	for host, p := range u.peers {
		resp, err := u.repo.HealthCheck(ctx, p.addr)
		alive := err == nil
		if was := p.alive.Swap(alive); was != alive {
			u.logger.Info("peer state changed", zap.String("host", host), zap.Bool("alive", alive))
		}
		if err != nil {
			u.logger.Warn(err.Error(), zap.String("host", host))
			continue
		}
		u.logger.Debug("peer is healthy", zap.String("host", host), zap.Int64("games", resp.Games))
	}
}

// Bootstrap fetches the games of the first peer that answers.
func (u *useCase) Bootstrap(ctx context.Context) (domain.GameHistories, error) {
	for host, p := range u.peers {
		games, err := u.repo.FetchGames(ctx, p.addr)
		if err != nil {
			u.logger.Warn(err.Error(), zap.String("host", host))
			continue
		}
		u.logger.Info("fetched games", zap.String("host", host), zap.Int("games", len(games)))
		return games, nil
	}
	return nil, errors.WithMessagef(ErrNoPeerAvailable, "%d peers", len(u.peers))
}

func (u *useCase) Addresses() map[string]string {
	addrs := make(map[string]string, len(u.peers))
	for host, p := range u.peers {
		addrs[host] = p.addr
	}
	return addrs
}
