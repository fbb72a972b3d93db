package reminder

import "go.uber.org/fx"

// Module exposes the reminder workflow engine via Fx.
var Module = fx.Options(
	fx.Provide(
		func() Clock { return SystemClock{} },
		NewGormSource,
		func(s *GormSource) Source { return s },
		NewEngine,
	),
)
