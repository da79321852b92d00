package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/kiryu-dev/penta/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type useCase struct {
	game       domain.GameUseCase
	sessions   map[string]*session
	statesChan chan domain.GameHistories
	syncPeriod time.Duration
	revision   *atomic.Int64
	mu         *sync.RWMutex
	logger     *zap.Logger
}

func New(game domain.GameUseCase, syncPeriod time.Duration, logger *zap.Logger) *useCase {
	return &useCase{
		game:       game,
		sessions:   make(map[string]*session),
		statesChan: make(chan domain.GameHistories, 1),
		syncPeriod: syncPeriod,
		revision:   atomic.NewInt64(0),
		mu:         &sync.RWMutex{},
		logger:     logger,
	}
}

func (u *useCase) CreateGame(_ context.Context) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	gameUuid := uuid.NewString()
	u.sessions[gameUuid] = newSession(gameUuid, domain.NewGameState(), u.logger)
	u.revision.Inc()
	u.logger.Info("created game", zap.String("game uuid", gameUuid))
	return gameUuid
}

func (u *useCase) Handle(ctx context.Context, gameUuid string, client domain.Client) error {
	s, ok := u.session(gameUuid)
	if !ok {
		return errors.WithMessagef(ErrUnknownGame, "game '%s'", gameUuid)
	}
	if err := s.subscribe(client); err != nil {
		return errors.WithMessage(err, "subscribe client")
	}
	defer s.unsubscribe(client)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrConnectionClosed):
			return nil
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		err = u.handleMessage(s, msg)
		switch {
		case domain.IsProtocolError(err), errors.Is(err, errUnexpectedMessage):
			u.logger.Warn("protocol error", zap.String("client uuid", client.Uuid()), zap.Error(err))
			if err := s.resync(client, err); err != nil {
				return errors.WithMessage(err, "resync client")
			}
		case err != nil:
			return errors.WithMessage(err, "handle message")
		}
	}
}

func (u *useCase) handleMessage(s *session, msg domain.Message) error {
	switch msg.Type {
	case domain.SubmitEvent:
		payload, err := utils.UnmarshalJson[domain.SubmitEventPayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(domain.ErrMalformedEvent, err.Error())
		}
		event := payload.Event.Event
		if event == nil {
			return errors.WithMessage(domain.ErrMalformedEvent, "empty event")
		}
		err = s.apply(func(state domain.GameState) (domain.GameState, error) {
			return u.game.ApplyEvent(state, event)
		})
		if err != nil {
			return errors.WithMessagef(err, "apply '%s' event", event.Type())
		}
		u.revision.Inc()
		return nil
	case domain.ClearIllegalMove:
		return s.apply(func(state domain.GameState) (domain.GameState, error) {
			return u.game.ClearIllegalMove(state), nil
		})
	default:
		return errors.WithMessagef(errUnexpectedMessage, "%d", msg.Type)
	}
}

func (u *useCase) session(gameUuid string) (*session, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s, ok := u.sessions[gameUuid]
	return s, ok
}

// State returns the current state of a game.
func (u *useCase) State(gameUuid string) (domain.GameState, bool) {
	s, ok := u.session(gameUuid)
	if !ok {
		return domain.GameState{}, false
	}
	return s.snapshot(), true
}

// SyncStates publishes the histories of all games to GamesStates once per sync
// period whenever a game changed locally. It returns when ctx is done.
func (u *useCase) SyncStates(ctx context.Context) {
	ticker := time.NewTicker(u.syncPeriod)
	defer ticker.Stop()
	var synced int64
	for {
		select {
		case <-ctx.Done():
			u.logger.Info("stop publishing game states")
			return
		case <-ticker.C:
		}
		revision := u.revision.Load()
		if revision == synced {
			continue
		}
		select {
		case u.statesChan <- u.Histories():
			synced = revision
		default:
			u.logger.Warn("previous states are not synced yet")
		}
	}
}

// Histories returns the history of every game in notation.
func (u *useCase) Histories() domain.GameHistories {
	u.mu.RLock()
	defer u.mu.RUnlock()
	states := make(domain.GameHistories, len(u.sessions))
	for gameUuid, s := range u.sessions {
		states[gameUuid] = s.snapshot().Notations()
	}
	return states
}

func (u *useCase) GamesStates() <-chan domain.GameHistories {
	return u.statesChan
}

// ApplyStates rebuilds the games received from another server by replaying
// their histories. A local game is replaced whenever its history differs from
// the received one, so undone moves reach this server as well.
func (u *useCase) ApplyStates(ctx context.Context, states domain.GameHistories) error {
	var failed []string
	for gameUuid, notations := range states {
		replaced, err := u.applyHistory(ctx, gameUuid, notations)
		if err != nil {
			u.logger.Warn("failed to replay game", zap.String("game uuid", gameUuid), zap.Error(err))
			failed = append(failed, gameUuid)
			continue
		}
		if replaced {
			u.logger.Debug("replaced game state", zap.String("game uuid", gameUuid))
		}
	}
	u.logger.Info("applied states", zap.Int("games", len(states)), zap.Strings("failed", failed))
	if len(failed) > 0 {
		return errors.Errorf("failed to replay %d games: %v", len(failed), failed)
	}
	return nil
}

func (u *useCase) applyHistory(ctx context.Context, gameUuid string, notations []domain.Notation) (bool, error) {
	events := make([]domain.Event, 0, len(notations))
	for _, n := range notations {
		events = append(events, n.Event)
	}
	replay := func() (domain.GameState, error) {
		return u.game.Replay(ctx, events)
	}
	if s, ok := u.session(gameUuid); ok {
		return s.converge(notations, replay)
	}
	state, err := replay()
	if err != nil {
		return false, err
	}
	u.mu.Lock()
	s, ok := u.sessions[gameUuid]
	if !ok {
		u.sessions[gameUuid] = newSession(gameUuid, state, u.logger)
		u.mu.Unlock()
		return true, nil
	}
	u.mu.Unlock()
	// the game was created while replaying
	return s.converge(notations, func() (domain.GameState, error) {
		return state, nil
	})
}
