package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type server struct {
	srv      *http.Server
	name     string
	hub      domain.HubUseCase
	sync     domain.SyncUseCase
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func New(name, port string, hub domain.HubUseCase, sync domain.SyncUseCase, logger *zap.Logger) *server {
	s := &server{
		srv:  &http.Server{Addr: port},
		name: name,
		hub:  hub,
		sync: sync,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
	s.srv.Handler = s.routes()
	return s
}

// ListenAndServe serves clients and peers until ctx is done. Games held by a
// peer are loaded before the first client is accepted.
func (s *server) ListenAndServe(ctx context.Context) error {
	if games, err := s.sync.Bootstrap(ctx); err != nil {
		s.logger.Info("starting without games of other servers", zap.Error(err))
	} else if err := s.hub.ApplyStates(ctx, games); err != nil {
		s.logger.Warn(err.Error())
	}
	go s.hub.SyncStates(ctx)
	go s.sync.Sync(ctx, s.hub.GamesStates())
	go s.sync.CheckPeersHealth(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shutdown http server: " + err.Error())
		}
	}()
	s.logger.Info("starting listening address: " + s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithMessage(err, "listen and serve")
	}
	return nil
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.createGame)
	mux.HandleFunc("GET /games", s.games)
	mux.HandleFunc("GET /game", s.serveWs)
	mux.HandleFunc("GET /health", s.healthCheck)
	mux.HandleFunc("POST /sync", s.applyStates)
	return mux
}
