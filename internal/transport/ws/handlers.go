package ws

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/penta/internal/domain"
	"go.uber.org/zap"
)

type createGameResponse struct {
	GameUuid string `json:"gameId"`
}

func (s *server) createGame(w http.ResponseWriter, r *http.Request) {
	gameUuid := s.hub.CreateGame(r.Context())
	s.writeJson(w, createGameResponse{GameUuid: gameUuid})
}

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	gameUuid := strings.TrimSpace(r.URL.Query().Get(domain.GameIdParam))
	if gameUuid == "" {
		s.logger.Warn(fmt.Sprintf("empty '%s' query param", domain.GameIdParam))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	clientUuid := strings.TrimSpace(r.Header.Get(domain.ClientUuidHeader))
	if clientUuid == "" {
		s.logger.Warn(fmt.Sprintf("empty '%s' header", domain.ClientUuidHeader))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err.Error())
		return
	}
	s.logger.Info("new connection", zap.String("game uuid", gameUuid), zap.String("client uuid", clientUuid))
	client := newClient(conn, clientUuid)
	defer client.Close()
	if err := s.hub.Handle(r.Context(), gameUuid, client); err != nil {
		s.logger.Error(err.Error(), zap.String("client uuid", clientUuid))
	}
}

func (s *server) games(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, s.hub.Histories())
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.logger.Debug("health checking...")
	s.writeJson(w, domain.HealthCheckResponse{
		ServerName: s.name,
		Games:      int64(len(s.hub.Histories())),
		Peers:      s.sync.Addresses(),
	})
}

func (s *server) applyStates(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("sync states")
	req := make(domain.GameHistories)
	if err := jsoniter.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn(err.Error())
		return
	}
	if err := s.hub.ApplyStates(r.Context(), req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.logger.Warn(err.Error())
	}
}

func (s *server) writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn(err.Error())
	}
}
