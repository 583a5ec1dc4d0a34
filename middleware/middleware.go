// Package middleware holds the request pipeline of the gateway: request ids,
// panic recovery, access logging, session loading and the role gate.
package middleware

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
)

// RequestID ensures a request id is present on the request, the response and
// the request metadata carried to upstream calls.
func RequestID() pmboard.Middleware {
	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			metadata := pmboard.RequestMetadataFromRequest(ctx.Request)
			if metadata.RequestID == "" {
				metadata.RequestID = pmboard.NewRequestID()
			}
			if metadata.RequestID != "" {
				ctx.Request.Header.Set(pmboard.RequestIDHeader, metadata.RequestID)
				ctx.ResponseWriter.Header().Set(pmboard.RequestIDHeader, metadata.RequestID)
			}
			ctx.Request = ctx.Request.WithContext(pmboard.WithRequestMetadata(ctx.Request.Context(), metadata))
			return next(ctx)
		}
	}
}

// Recover converts panics into internal errors.
func Recover() pmboard.Middleware {
	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx.Logger().Error("panic recovered", slog.Any("panic", rec), slog.String("stack", string(debug.Stack())))
					err = apperr.Internal("panic", fmt.Errorf("%v", rec))
				}
			}()
			return next(ctx)
		}
	}
}

// Logger logs request/response details.
func Logger() pmboard.Middleware {
	return LoggerWithOptions(DefaultLoggerOptions())
}

// LoggerOptions configures access logging.
type LoggerOptions struct {
	Fields     []LogField
	Message    string
	SkipPaths  []string
	ErrorLevel bool
}

// DefaultLoggerOptions returns default logging options.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Fields:     DefaultLogFields(),
		Message:    "request completed",
		SkipPaths:  []string{"/healthz", "/readyz"},
		ErrorLevel: true,
	}
}

// LoggerWithOptions logs requests using the provided options.
func LoggerWithOptions(options LoggerOptions) pmboard.Middleware {
	if len(options.Fields) == 0 {
		options.Fields = DefaultLogFields()
	}
	if options.Message == "" {
		options.Message = "request completed"
	}

	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			if shouldSkipPath(ctx.Request.URL.Path, options.SkipPaths) {
				return next(ctx)
			}

			start := time.Now()
			recorder := newResponseRecorder(ctx.ResponseWriter)
			ctx.ResponseWriter = recorder

			err := next(ctx)

			recorder.settle(err)
			duration := time.Since(start)
			attrs := make([]slog.Attr, 0, len(options.Fields))
			for _, field := range options.Fields {
				attrs = append(attrs, field(ctx, recorder, duration))
			}

			if options.ErrorLevel && (err != nil || recorder.Status() >= http.StatusInternalServerError) {
				ctx.Logger().Error(options.Message, attrs...)
				return err
			}
			ctx.Logger().Info(options.Message, attrs...)
			return err
		}
	}
}

// responseRecorder captures status and response size.
type responseRecorder struct {
	writer http.ResponseWriter
	status int
	bytes  int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{writer: w}
}

// settle records the status the error handler is about to write.
func (r *responseRecorder) settle(err error) {
	if err == nil || r.status != 0 {
		return
	}
	if appErr := apperr.As(err); appErr != nil {
		r.status = appErr.Status
		return
	}
	r.status = http.StatusInternalServerError
}

func (r *responseRecorder) Header() http.Header {
	return r.writer.Header()
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.writer.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.writer.Write(p)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseRecorder) Bytes() int {
	return r.bytes
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.writer.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hijacker.Hijack()
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.writer
}
