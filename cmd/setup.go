package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/codesentry/internal/analyzer"
	"github.com/codesentry/internal/config"
	"github.com/codesentry/internal/patterns"
	"github.com/codesentry/internal/remote"
	"github.com/codesentry/internal/routing"
	"github.com/codesentry/internal/session"
	"github.com/codesentry/internal/storage"
)

// buildGateway assembles the full pipeline from configuration: pattern
// library, analyzer, decider, remote client, store, gateway. The caller owns
// closing the returned store.
func buildGateway(c *cli.Context) (*config.Config, *session.Gateway, *storage.Store, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	applyLogLevel(cfg.Log.Level)

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open conversation store: %w", err)
	}

	decider := routing.New(analyzer.New(patterns.NewLibrary()))
	client := remote.NewClient(cfg.Remote.BaseURL, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)
	gateway := session.New(decider, client, store, cfg.Gateway.RequestsPerMinute)

	return cfg, gateway, store, nil
}

func applyLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
