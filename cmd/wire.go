package cmd

import (
	"fmt"
	"log/slog"

	"github.com/bnema/pagemap-sessions/internal/adapters/repo/memory"
	tomlrepo "github.com/bnema/pagemap-sessions/internal/adapters/repo/toml"
	"github.com/bnema/pagemap-sessions/internal/adapters/report"
	"github.com/bnema/pagemap-sessions/internal/application"
	"github.com/bnema/pagemap-sessions/internal/config"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/bnema/pagemap-sessions/internal/ports"
	"github.com/spf13/viper"
)

const sweepFailureBuffer = 16

type app struct {
	cfg         config.Config
	logger      *slog.Logger
	pages       ports.PageStore
	coordinator *idle.Coordinator
	sessions    *application.SessionStore
	failures    *report.Channel
}

func wireApp(v *viper.Viper, cfg config.Config, logger *slog.Logger) (*app, error) {
	pages, err := newPageStore(v, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("wire page store: %w", err)
	}

	failures := report.NewChannel(sweepFailureBuffer)
	coordinator, err := idle.NewCoordinator(idle.Config{
		IdleTimeout: cfg.Idle.Timeout,
		SweepPeriod: cfg.Idle.SweepPeriod,
		Logger:      logger,
	}, ports.SystemClock{}, report.Fanout(report.NewLogger(logger), failures))
	if err != nil {
		return nil, fmt.Errorf("wire idle coordinator: %w", err)
	}

	sessions, err := application.NewSessionStore(coordinator, pages, ports.SystemClock{})
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		pages:       pages,
		coordinator: coordinator,
		sessions:    sessions,
		failures:    failures,
	}, nil
}

func newPageStore(v *viper.Viper, cfg config.StoreConfig) (ports.PageStore, error) {
	switch cfg.Kind {
	case config.StoreKindMemory:
		return memory.NewPageRepository(cfg.MaxVersions), nil
	case config.StoreKindTOML:
		repo, err := tomlrepo.NewPageRepository(v)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
