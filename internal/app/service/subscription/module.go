package subscription

import (
	"go.uber.org/fx"

	"github.com/renewly/renewly/internal/app/service/scheduler"
)

// Module exposes the subscription lifecycle service via Fx.
var Module = fx.Options(
	fx.Provide(
		func(s *scheduler.Service) RunEnqueuer { return s },
		NewService,
	),
)
