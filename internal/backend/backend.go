// Package backend selects the task store implementation from configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"todo/internal/backend/googletasks"
	"todo/internal/backend/restapi"
	"todo/internal/config"
	"todo/internal/service"
)

// New creates the service.Service named by cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (service.Service, error) {
	cfg.Logger().Debug("selecting backend", zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendREST, "":
		return restapi.New(cfg)
	case config.BackendGoogle:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w: oauth_client.json not found in %s", service.ErrUnauthenticated, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, fmt.Errorf("%w: not logged in (run: todo login)", service.ErrUnauthenticated)
		}
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
