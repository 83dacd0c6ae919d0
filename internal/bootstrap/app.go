package bootstrap

import (
	"fmt"
	"os"

	"github.com/cassiomorais/multipay/internal/config"
	"github.com/cassiomorais/multipay/internal/observability"
	"github.com/cassiomorais/multipay/internal/registry"
	"github.com/rs/zerolog"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Registry *registry.Registry
}

func New(serviceName, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Msg("Starting")

	metrics := observability.NewMetrics(metricsNamespace, nil)
	logger.Info().Msg("Metrics initialized")

	reg := registry.FromConfig(cfg.Gateways)
	if len(reg.Names()) == 0 {
		logger.Warn().Msg("No gateways configured; payment requests will be rejected")
	} else {
		logger.Info().Strs("gateways", reg.Names()).Msg("Gateways registered")
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Registry: reg,
	}, nil
}
