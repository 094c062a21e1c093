// Package log builds the [slog.Handler]s used by standing and carries loggers
// through a [context.Context].
//
// Text output is formatted by charmbracelet/log; json and logfmt use the
// standard library handlers. Source locations are only recorded at debug
// level.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"

	charmlog "github.com/charmbracelet/log"
)

type (
	Format string
	Level  string

	contextKey struct{}
)

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
	FormatText   Format = "text"

	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"

	// Trace IDs are shortened to this many hex digits in log records.
	traceIDLen = 8
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")

	AllFormats = []string{
		string(FormatJSON),
		string(FormatLogfmt),
		string(FormatText),
	}
	AllLevels = []string{
		string(LevelError),
		string(LevelWarn),
		string(LevelInfo),
		string(LevelDebug),
	}

	levels = map[Level]slog.Level{
		LevelError: slog.LevelError,
		LevelWarn:  slog.LevelWarn,
		"warning":  slog.LevelWarn,
		LevelInfo:  slog.LevelInfo,
		LevelDebug: slog.LevelDebug,
	}
)

// New returns a logger writing logFormat records at logLevel and above to w.
func New(w io.Writer, logLevel, logFormat string) (*slog.Logger, error) {
	h, err := CreateHandlerWithStrings(w, logLevel, logFormat)
	if err != nil {
		return nil, err
	}

	return slog.New(h), nil
}

// CreateHandlerWithStrings creates a [slog.Handler] by strings.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	logLvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := GetFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return CreateHandler(w, logLvl, logFmt), nil
}

// CreateHandler creates a [slog.Handler] writing logFmt records at logLvl
// and above to w.
func CreateHandler(w io.Writer, logLvl slog.Level, logFmt Format) slog.Handler {
	debug := logLvl <= slog.LevelDebug
	opts := &slog.HandlerOptions{
		AddSource: debug,
		Level:     logLvl,
	}

	switch logFmt {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	case FormatText:
		return newCharmLogHandler(w, logLvl, debug)
	}

	return nil
}

// GetLevel parses a level name, case-insensitively. "warning" is accepted
// for [LevelWarn].
func GetLevel(level string) (slog.Level, error) {
	lvl, ok := levels[Level(strings.ToLower(level))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
	}

	return lvl, nil
}

// GetFormat parses a format name, case-insensitively.
func GetFormat(format string) (Format, error) {
	logFmt := strings.ToLower(format)
	if !slices.Contains(AllFormats, logFmt) {
		return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
	}

	return Format(logFmt), nil
}

func newCharmLogHandler(w io.Writer, level slog.Level, caller bool) slog.Handler {
	//nolint:gosec // G115: input from GetLevel.
	lvl := int32(level)

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(lvl),
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		ReportCaller:    caller,
		TimeFormat:      "15:04:05.000",
	})
	logger.SetColorProfile(termenv.ColorProfile())

	return logger
}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the logger stored by [NewContext]. Otherwise it returns
// the default logger, tagged with the active trace ID when ctx carries a span.
func WithContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return slog.Default()
	}

	traceID := sc.TraceID().String()

	return slog.With(slog.String("trace_id", traceID[:min(len(traceID), traceIDLen)]))
}
