package util

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel/trace"
)

type traceIDInjector struct{}

// NewTraceIDInterceptor exposes the trace id of a request in the response
// header, also for failed calls.
func NewTraceIDInterceptor() connect.Interceptor {
	return &traceIDInjector{}
}

const (
	TraceIDHeader = "X-Trace-ID"
)

func traceID(ctx context.Context) (string, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

//nolint:whitespace // better readability
func (i *traceIDInjector) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return connect.UnaryFunc(func(
		ctx context.Context,
		req connect.AnyRequest,
	) (connect.AnyResponse, error) {
		id, ok := traceID(ctx)
		if !ok {
			return next(ctx, req)
		}
		res, err := next(ctx, req)
		if err != nil {
			var cerr *connect.Error
			if errors.As(err, &cerr) {
				cerr.Meta().Set(TraceIDHeader, id)
			}
			return nil, err
		}
		res.Header().Set(TraceIDHeader, id)
		return res, nil
	})
}

//
//nolint:whitespace // readablity, editor/linter
func (i *traceIDInjector) WrapStreamingClient(
	next connect.StreamingClientFunc,
) connect.StreamingClientFunc {
	return next
}

//
//nolint:whitespace // readablity, editor/linter
func (i *traceIDInjector) WrapStreamingHandler(
	next connect.StreamingHandlerFunc,
) connect.StreamingHandlerFunc {
	return connect.StreamingHandlerFunc(func(
		ctx context.Context,
		conn connect.StreamingHandlerConn,
	) error {
		if id, ok := traceID(ctx); ok {
			conn.ResponseHeader().Set(TraceIDHeader, id)
		}
		return next(ctx, conn)
	})
}
