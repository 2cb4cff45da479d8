package allocation

import (
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/shell/observable"
)

func wrapCommand[C shell.Command](handler shell.CoreCommandHandler[C], cfg config) (shell.CoreCommandHandler[C], error) {
	return observable.NewCommandWrapper(handler,
		observable.WithCommandMetrics[C](cfg.metricsCollector),
		observable.WithCommandTracing[C](cfg.tracingCollector),
		observable.WithCommandContextualLogging[C](cfg.contextualLogger),
		observable.WithCommandLogging[C](cfg.logger),
	)
}

func wrapQuery[Q shell.Query, R shell.QueryResult](handler shell.CoreQueryHandler[Q, R], cfg config) (shell.CoreQueryHandler[Q, R], error) {
	return observable.NewQueryWrapper(handler,
		observable.WithQueryMetrics[Q, R](cfg.metricsCollector),
		observable.WithQueryTracing[Q, R](cfg.tracingCollector),
		observable.WithQueryContextualLogging[Q, R](cfg.contextualLogger),
		observable.WithQueryLogging[Q, R](cfg.logger),
	)
}
