package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levels = [...]struct {
	name  string
	color string
}{
	DEBUG: {"DEBUG", "\033[36m"},
	INFO:  {"INFO", "\033[32m"},
	WARN:  {"WARN", "\033[33m"},
	ERROR: {"ERROR", "\033[31m"},
}

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levels[l].name
}

// ParseLevel maps LOG_LEVEL values to a Level, INFO when unrecognised.
func ParseLevel(s string) Level {
	s = strings.ToUpper(s)
	if s == "WARNING" {
		return WARN
	}
	for l, def := range levels {
		if def.name == s {
			return Level(l)
		}
	}
	return INFO
}

// Logger writes leveled lines with an optional prefix and sorted fields.
// Loggers derived from one root share its write lock.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

func WithColors(enabled bool) Option {
	return func(l *Logger) { l.colorize = enabled }
}

func New(opts ...Option) *Logger {
	l := &Logger{
		mu:       &sync.Mutex{},
		out:      os.Stdout,
		level:    INFO,
		colorize: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

func SetDefault(l *Logger) { defaultLogger = l }

func Default() *Logger { return defaultLogger }

func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a derived logger carrying fields on top of l's own.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	c := *l
	c.fields = merged
	return &c
}

func (l *Logger) WithPrefix(prefix string) *Logger {
	c := *l
	c.prefix = prefix
	return &c
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteByte(' ')
	if l.colorize {
		fmt.Fprintf(&sb, "%s%-5s\033[0m ", levels[level].color, level)
	} else {
		fmt.Fprintf(&sb, "%-5s ", level)
	}
	if l.prefix != "" {
		fmt.Fprintf(&sb, "[%s] ", l.prefix)
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		fmt.Fprintf(&sb, "[%s:%d] ", file[strings.LastIndex(file, "/")+1:], line)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	sb.WriteString(msg)

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, formatValue(l.fields[k]))
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (l *Logger) Debug(msg string, args ...any) { l.log(DEBUG, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(INFO, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(WARN, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(ERROR, msg, args...) }

type ctxKey struct{}

// FromContext returns the request-scoped logger, or the default one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
