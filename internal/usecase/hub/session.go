package hub

import (
	"reflect"
	"sync"

	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// session owns the state of one game. Every change goes through apply or converge,
// which hold the lock from reading the state to broadcasting the result.
type session struct {
	uuid    string
	mu      *sync.Mutex
	state   domain.GameState
	clients map[string]domain.Client
	logger  *zap.Logger
}

func newSession(uuid string, state domain.GameState, logger *zap.Logger) *session {
	return &session{
		uuid:    uuid,
		mu:      &sync.Mutex{},
		state:   state,
		clients: make(map[string]domain.Client),
		logger:  logger.With(zap.String("game uuid", uuid)),
	}
}

func (s *session) subscribe(client domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.Uuid()] = client
	s.logger.Info("client subscribed", zap.String("client uuid", client.Uuid()))
	return s.send(client)
}

func (s *session) unsubscribe(client domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[client.Uuid()] == client {
		delete(s.clients, client.Uuid())
	}
	s.logger.Info("client unsubscribed", zap.String("client uuid", client.Uuid()))
}

func (s *session) apply(fn func(domain.GameState) (domain.GameState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err != nil {
		return err
	}
	s.state = next
	s.broadcast()
	return nil
}

// converge replaces the state with the one replay builds unless the game
// already has exactly the given history. Comparison and replacement happen
// under one lock.
func (s *session) converge(notations []domain.Notation, replay func() (domain.GameState, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sameHistory(s.state.Notations(), notations) {
		return false, nil
	}
	next, err := replay()
	if err != nil {
		return false, err
	}
	s.state = next
	s.broadcast()
	return true, nil
}

func sameHistory(a, b []domain.Notation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (s *session) snapshot() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// resync sends the full state to a client whose event stream went out of sync.
func (s *session) resync(client domain.Client, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := client.WriteMessage(domain.Message{
		Type:    domain.ProtocolError,
		Payload: domain.ProtocolErrorPayload{Error: cause.Error()},
	})
	if err != nil {
		return errors.WithMessage(err, "send protocol error")
	}
	return s.send(client)
}

func (s *session) broadcast() {
	for uuid, client := range s.clients {
		if err := s.send(client); err != nil {
			s.logger.Warn("failed to send state", zap.String("client uuid", uuid), zap.Error(err))
		}
	}
}

func (s *session) send(client domain.Client) error {
	err := client.WriteMessage(domain.Message{
		Type: domain.StateUpdate,
		Payload: domain.StateUpdatePayload{
			GameUuid: s.uuid,
			State:    domain.NewStateView(s.state),
		},
	})
	if err != nil {
		return errors.WithMessage(err, "send state update")
	}
	return nil
}
