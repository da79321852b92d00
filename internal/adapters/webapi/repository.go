package webapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/pkg/errors"
)

const (
	clientTimeout       = 5 * time.Second
	syncStatesEndpoint  = "/sync"
	healthCheckEndpoint = "/health"
	gamesEndpoint       = "/games"
)

type repository struct {
	cli *http.Client
}

func New() repository {
	return repository{
		cli: &http.Client{Timeout: clientTimeout},
	}
}

// Sync pushes game histories to the server at addr, which replays them.
func (r repository) Sync(ctx context.Context, addr string, states domain.GameHistories) error {
	body, err := jsoniter.Marshal(states)
	if err != nil {
		return errors.WithMessage(err, "marshal json body")
	}
	return r.call(ctx, http.MethodPost, addr+syncStatesEndpoint, bytes.NewReader(body), nil)
}

func (r repository) HealthCheck(ctx context.Context, addr string) (*domain.HealthCheckResponse, error) {
	result := new(domain.HealthCheckResponse)
	if err := r.call(ctx, http.MethodGet, addr+healthCheckEndpoint, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchGames loads the histories of all games another server holds.
func (r repository) FetchGames(ctx context.Context, addr string) (domain.GameHistories, error) {
	result := make(domain.GameHistories)
	if err := r.call(ctx, http.MethodGet, addr+gamesEndpoint, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r repository) call(ctx context.Context, method, url string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.WithMessagef(err, "new %s request", method)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.cli.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "call http endpoint '%s'", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	if result == nil {
		return nil
	}
	if err := jsoniter.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.WithMessage(err, "decode json response body")
	}
	return nil
}
