package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin facade over zerolog. All call sites pass an optional
// field map instead of chaining zerolog events, which keeps logging one
// line at the point of use.
type Logger struct {
	zlog zerolog.Logger
}

// New builds a logger for the given environment. Development gets colored
// console output at debug level; anything else gets JSON at info level.
func New(env string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	dev := env == "development"

	var output io.Writer = os.Stdout
	if dev {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{zlog: zlog}
}

func emit(event *zerolog.Event, msg string, fields map[string]interface{}) {
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	emit(l.zlog.Debug(), msg, fields)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	emit(l.zlog.Info(), msg, fields)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	emit(l.zlog.Warn(), msg, fields)
}

// Error logs an error message with the error attached.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	emit(l.zlog.Error().Err(err), msg, fields)
}

// Fatal logs the message and error, then exits.
func (l *Logger) Fatal(msg string, err error, fields map[string]interface{}) {
	emit(l.zlog.Fatal().Err(err), msg, fields)
}

// With creates a child logger carrying the given fields on every line.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithRequestID creates a child logger tagged with a request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("request_id", requestID).Logger()}
}

// WithComponent creates a child logger tagged with an engine component name,
// e.g. "validation" or "depreciation".
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", component).Logger()}
}

// GetZerolog exposes the underlying zerolog.Logger for the rare case the
// facade is not enough.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
