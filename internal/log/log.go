// Package log provides the leveled logger interface used across xeroizer and a
// default implementation writing one line per message.
//
// Messages are printf formats; tags attached with With are appended to every
// line as key=value pairs:
//
//	logger := log.New(os.Stderr, log.LevelInfo).With("file", "invoices.xml")
//	logger.Info("decoded %d records", n)
//	// 2026-10-17T10:00:00Z INFO decoded 3 records file=invoices.xml
package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a configuration value ("debug", "info", "warn",
// "error") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the logging interface. With returns a logger that appends the
// given key/value pairs to every message.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(tags ...interface{}) Logger
}

// Default writes leveled lines to an io.Writer. It is safe for concurrent use.
type Default struct {
	out   io.Writer
	mu    *sync.Mutex
	level Level
	tags  []interface{}
	now   func() time.Time
}

// New returns a logger writing messages at or above level to out.
func New(out io.Writer, level Level) *Default {
	return &Default{out: out, mu: &sync.Mutex{}, level: level, now: time.Now}
}

func (l *Default) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args) }
func (l *Default) Info(msg string, args ...interface{})  { l.log(LevelInfo, msg, args) }
func (l *Default) Warn(msg string, args ...interface{})  { l.log(LevelWarn, msg, args) }
func (l *Default) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args) }

// With returns a copy of l with additional tags.
func (l *Default) With(tags ...interface{}) Logger {
	t := make([]interface{}, 0, len(l.tags)+len(tags))
	t = append(t, l.tags...)
	t = append(t, tags...)
	return &Default{out: l.out, mu: l.mu, level: l.level, tags: t, now: l.now}
}

func (l *Default) log(level Level, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	if len(args) > 0 {
		fmt.Fprintf(&b, msg, args...)
	} else {
		b.WriteString(msg)
	}
	for i := 0; i < len(l.tags); i += 2 {
		if i+1 < len(l.tags) {
			fmt.Fprintf(&b, " %v=%v", l.tags[i], l.tags[i+1])
		} else {
			fmt.Fprintf(&b, " %v", l.tags[i])
		}
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

// Discard is a logger that drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
func (discard) With(...interface{}) Logger   { return discard{} }
