package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyPort      = errors.New("server port is not specified")
	ErrBadSyncPeriod  = errors.New("sync period must be positive")
	ErrDuplicatedPeer = errors.New("outer server is specified twice")
)

const defaultSyncPeriod = 5 * time.Second

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

type config struct {
	Name       string         `yaml:"name"`
	Port       string         `yaml:"port"`
	SyncPeriod time.Duration  `yaml:"sync_period"`
	Log        LogConfig      `yaml:"log"`
	Servers    []ServerConfig `yaml:"outer_servers"`
}

// New reads the yaml config at cfgPath. SERVER_NAME and SERVER_PORT override
// the file.
func New(cfgPath string) (config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return config{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	cfg := config{SyncPeriod: defaultSyncPeriod}
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return config{}, errors.WithMessage(err, "decode yaml config")
	}
	if name := os.Getenv("SERVER_NAME"); name != "" {
		cfg.Name = name
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Port == "" {
		return ErrEmptyPort
	}
	if c.SyncPeriod <= 0 {
		return ErrBadSyncPeriod
	}
	seen := make(map[ServerConfig]struct{}, len(c.Servers))
	for _, srv := range c.Servers {
		if _, ok := seen[srv]; ok {
			return errors.WithMessagef(ErrDuplicatedPeer, "'%s:%d'", srv.Host, srv.Port)
		}
		seen[srv] = struct{}{}
	}
	return nil
}
