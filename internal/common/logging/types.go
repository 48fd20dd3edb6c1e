// Package logging is the structured logger shared by the codec, the address
// book and the command line. Entries go through zap.
package logging

import (
	"context"
	"io"
	"strings"
)

// LogLevel orders entries by severity.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l LogLevel) String() string {
	if l < DebugLevel || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a level name case-insensitively. WARNING is accepted for
// WARN; anything unrecognized is InfoLevel.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return WarnLevel
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i)
		}
	}
	return InfoLevel
}

// Field is one key/value attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

// Logger writes leveled entries. WithFields and WithContext return derived
// loggers and leave the receiver unchanged.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	WithFields(fields ...Field) Logger
	WithContext(ctx context.Context) Logger
}

// LogConfig configures NewZapLogger. A nil Output writes to standard error;
// an empty TimeFormat means RFC 3339. Prefix names the logger.
type LogConfig struct {
	Level      LogLevel
	Output     io.Writer
	TimeFormat string
	Prefix     string
}

type contextKey string

const (
	sourceKey contextKey = "source"
	formatKey contextKey = "format"
)

// ContextWithSource tags ctx with the name of the input being read. A logger
// derived with WithContext logs it as "source".
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// ContextWithFormat tags ctx with the wire format being read, logged as
// "format".
func ContextWithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, formatKey, format)
}

// contextFields returns the tags of ctx as fields.
func contextFields(ctx context.Context) []Field {
	var fields []Field
	if source, ok := ctx.Value(sourceKey).(string); ok {
		fields = append(fields, String("source", source))
	}
	if format, ok := ctx.Value(formatKey).(string); ok {
		fields = append(fields, String("format", format))
	}
	return fields
}
