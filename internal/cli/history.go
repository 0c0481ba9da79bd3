package cli

import (
	"context"

	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/server"
	"github.com/okian/racebet/pkg/logger"
)

// withService loads the configured history into a started service, runs fn
// and stops the service again.
func withService(ctx context.Context, opts *RootOptions, fn func(*service.Service) error) error {
	svc, err := server.NewService(opts.Config(), logger.Get())
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeHistory, "open history", err)
	}
	if err := svc.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeHistory, "load history", err)
	}
	defer svc.Stop()
	return fn(svc)
}
