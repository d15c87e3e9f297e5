package postgres

import (
	"context"
	"log/slog"
	"time"

	"whisper/internal/domain/repository"

	"go.uber.org/fx"
)

const sessionSweepInterval = time.Hour

// SweeperParams defines the dependencies of the session sweeper.
type SweeperParams struct {
	fx.In
	fx.Lifecycle

	SessionRepo repository.SessionRepository
	Logger      *slog.Logger
}

// RegisterSessionSweeper starts a background loop that prunes expired
// session records. Expired sessions are already rejected on restore; the
// sweeper only keeps the table from growing without bound.
func RegisterSessionSweeper(params SweeperParams) {
	sweepCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweepSessions(sweepCtx, params.SessionRepo, params.Logger, sessionSweepInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})
}

func sweepSessions(ctx context.Context, repo repository.SessionRepository, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpiredSessions(ctx); err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "expired session sweep failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
