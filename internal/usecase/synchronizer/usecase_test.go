package synchronizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiryu-dev/penta/internal/config"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errPeerDown = errors.New("peer is down")

type fakeRepo struct {
	mu     sync.Mutex
	down   map[string]bool
	games  map[string]domain.GameHistories
	synced map[string][]domain.GameHistories
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		down:   make(map[string]bool),
		games:  make(map[string]domain.GameHistories),
		synced: make(map[string][]domain.GameHistories),
	}
}

func (r *fakeRepo) Sync(_ context.Context, addr string, states domain.GameHistories) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down[addr] {
		return errPeerDown
	}
	r.synced[addr] = append(r.synced[addr], states)
	return nil
}

func (r *fakeRepo) HealthCheck(_ context.Context, addr string) (*domain.HealthCheckResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down[addr] {
		return nil, errPeerDown
	}
	return &domain.HealthCheckResponse{ServerName: addr, Games: int64(len(r.games[addr]))}, nil
}

func (r *fakeRepo) FetchGames(_ context.Context, addr string) (domain.GameHistories, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down[addr] {
		return nil, errPeerDown
	}
	return r.games[addr], nil
}

func (r *fakeRepo) syncedTo(addr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.synced[addr])
}

var servers = []config.ServerConfig{
	{Host: "penta-1", Port: 8080},
	{Host: "penta-2", Port: 8080},
	{Host: "penta-3", Port: 9090},
}

const (
	peer2 = "http://penta-2:8080"
	peer3 = "http://penta-3:9090"
)

func TestNew(t *testing.T) {
	u := New(newFakeRepo(), "penta-1", servers, zap.NewNop())
	require.Equal(t, map[string]string{"penta-2": peer2, "penta-3": peer3}, u.Addresses())
}

func TestSync(t *testing.T) {
	repo := newFakeRepo()
	repo.down[peer3] = true
	u := New(repo, "penta-1", servers, zap.NewNop())
	u.checkPeers(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	statesChan := make(chan domain.GameHistories)
	done := make(chan struct{})
	go func() {
		u.Sync(ctx, statesChan)
		close(done)
	}()
	statesChan <- domain.GameHistories{"game": {{Event: domain.InitGameEvent{}}}}
	require.Eventually(t, func() bool {
		return repo.syncedTo(peer2) == 1
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done
	require.Zero(t, repo.syncedTo(peer3), "dead peers should be skipped")
}

func TestCheckPeers(t *testing.T) {
	repo := newFakeRepo()
	u := New(repo, "penta-1", servers, zap.NewNop())

	repo.down[peer2] = true
	u.checkPeers(context.Background())
	require.False(t, u.peers["penta-2"].alive.Load())
	require.True(t, u.peers["penta-3"].alive.Load())

	repo.down[peer2] = false
	u.checkPeers(context.Background())
	require.True(t, u.peers["penta-2"].alive.Load(), "peer should come back once it answers")
}

func TestBootstrap(t *testing.T) {
	repo := newFakeRepo()
	games := domain.GameHistories{"game": {{Event: domain.InitGameEvent{}}}}
	repo.games[peer2] = games
	repo.games[peer3] = games

	u := New(repo, "penta-1", servers, zap.NewNop())
	got, err := u.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, games, got)

	repo.down[peer2] = true
	repo.down[peer3] = true
	_, err = u.Bootstrap(context.Background())
	require.True(t, errors.Is(err, ErrNoPeerAvailable))
}
