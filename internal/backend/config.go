package backend

import (
	"errors"
	"fmt"
	"strings"

	"tripcal/internal/config"
)

// BackendTypes lists the overlay backends the factory can build.
var BackendTypes = []BackendType{MemoryBackend, SQLiteBackend}

// FromAppConfig selects the overlay backend named by OVERLAY_BACKEND. AMQP
// settings are carried along; the factory decides whether they apply.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         BackendType(strings.ToLower(strings.TrimSpace(appConfig.OverlayBackend))),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields the chosen backend needs. AMQP is optional.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		names := make([]string, len(BackendTypes))
		for i, t := range BackendTypes {
			names[i] = t.String()
		}
		return fmt.Errorf("invalid backend type %q: must be one of %s", c.Type, strings.Join(names, ", "))
	}
	if c.Type == SQLiteBackend && strings.TrimSpace(c.SQLiteDBPath) == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}
