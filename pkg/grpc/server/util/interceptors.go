package util

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mpapenbr/f1-dashboard-service/log"
)

type loggerInjector struct {
	l *log.Logger
}

// NewLoggerInterceptor puts a logger carrying the called procedure into the
// request context
func NewLoggerInterceptor(l *log.Logger) connect.Interceptor {
	return &loggerInjector{l: l}
}

//nolint:whitespace // better readability
func (i *loggerInjector) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return connect.UnaryFunc(func(
		ctx context.Context,
		req connect.AnyRequest,
	) (connect.AnyResponse, error) {
		l := i.l.With(log.String("procedure", req.Spec().Procedure))
		return next(log.AddToContext(ctx, l), req)
	})
}

//
//nolint:whitespace // readablity, editor/linter
func (i *loggerInjector) WrapStreamingClient(
	next connect.StreamingClientFunc,
) connect.StreamingClientFunc {
	return next
}

//
//nolint:whitespace // readablity, editor/linter
func (i *loggerInjector) WrapStreamingHandler(
	next connect.StreamingHandlerFunc,
) connect.StreamingHandlerFunc {
	return connect.StreamingHandlerFunc(func(
		ctx context.Context,
		conn connect.StreamingHandlerConn,
	) error {
		l := i.l.With(log.String("procedure", conn.Spec().Procedure))
		return next(log.AddToContext(ctx, l), conn)
	})
}
