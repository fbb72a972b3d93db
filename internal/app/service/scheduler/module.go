package scheduler

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module starts the durable-timer poll loop under the fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(runPoller),
)

func runPoller(lc fx.Lifecycle, log *zap.SugaredLogger, s *Service) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("starting workflow scheduler",
				"poll_interval", s.cfg.Scheduler.PollInterval,
				"batch_size", s.cfg.Scheduler.BatchSize)
			go s.loop(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			log.Infow("stopping workflow scheduler")
			cancel()
			return nil
		},
	})
}
