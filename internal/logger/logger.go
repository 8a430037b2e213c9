// Package logger provides structured logging with colored console output,
// optional file output, and forwarding of client diagnostic events, using
// log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Guliveer/twitch-helix-go/internal/events"
)

// ANSI color codes for terminal output.
const (
	colorReset     = "\033[0m"
	colorRed       = "\033[31m"
	colorGreen     = "\033[32m"
	colorYellow    = "\033[33m"
	colorLightBlue = "\033[94m"
	colorMagenta   = "\033[35m"
	colorCyan      = "\033[36m"
	colorGray      = "\033[90m"
)

// coloredAttrKeys maps slog attribute keys to ANSI color codes for value highlighting.
var coloredAttrKeys = map[string]string{
	"path":     colorMagenta,
	"status":   colorLightBlue,
	"resolver": colorMagenta,
	"error":    colorRed,
}

// Config holds logger configuration options.
type Config struct {
	Level     slog.Level
	FileLevel slog.Level
	Colored   bool
	LogDir    string
	// Name prefixes console lines and names the log file.
	Name string
	// Output receives console lines. Defaults to os.Stdout.
	Output io.Writer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		FileLevel: slog.LevelDebug,
		Colored:   true,
	}
}

// Logger wraps slog.Logger with a name prefix and event forwarding.
type Logger struct {
	*slog.Logger
}

// Setup creates a new Logger based on the provided configuration.
// It sets up console and optional file handlers.
func Setup(cfg Config) (*Logger, error) {
	var handlers []slog.Handler

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	consoleHandler := newColorHandler(out, cfg.Level, cfg.Colored, cfg.Name)
	handlers = append(handlers, consoleHandler)

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", cfg.LogDir, err)
		}

		filename := "helix.log"
		if cfg.Name != "" {
			filename = cfg.Name + ".log"
		}

		logFile, err := os.OpenFile(
			filepath.Join(cfg.LogDir, filename),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: cfg.FileLevel,
		})
		handlers = append(handlers, fileHandler)
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}

	return &Logger{Logger: slog.New(handler)}, nil
}

// EventSource is anything that publishes diagnostic events, such as a
// *helix.Client.
type EventSource interface {
	On(kind events.Kind, handler events.Handler) (unsubscribe func())
}

var eventLevels = map[events.Kind]slog.Level{
	events.KindInfo:  slog.LevelInfo,
	events.KindWarn:  slog.LevelWarn,
	events.KindError: slog.LevelError,
}

// Attach forwards the log-info, log-warn and log-error events of src to the
// logger at INFO, WARN and ERROR level. The returned function detaches it.
func (l *Logger) Attach(src EventSource) (detach func()) {
	unsubs := make([]func(), 0, len(eventLevels))
	for kind, level := range eventLevels {
		unsubs = append(unsubs, src.On(kind, func(ev events.Event) {
			l.logEvent(level, ev)
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (l *Logger) logEvent(level slog.Level, ev events.Event) {
	ctx := context.Background()
	h := l.Handler()
	if !h.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(ev.Time, level, ev.Message, 0)
	r.Add(ev.Attrs()...)
	_ = h.Handle(ctx, r)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type colorHandler struct {
	mu      *sync.Mutex
	writer  io.Writer
	level   slog.Level
	colored bool
	name    string
	// group is the dotted prefix added by WithGroup, e.g. "request.".
	group string
	attrs []slog.Attr
}

func newColorHandler(w io.Writer, level slog.Level, colored bool, name string) *colorHandler {
	return &colorHandler{
		mu:      &sync.Mutex{},
		writer:  w,
		level:   level,
		colored: colored,
		name:    name,
	}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	timeStr := record.Time.Format("02/01/06 15:04:05")
	prefix := ""
	if h.name != "" {
		prefix = fmt.Sprintf("[%s] ", h.name)
	}

	if h.colored {
		fmt.Fprintf(&b, "%s%s - %s%s%s - %s%s",
			colorGray, timeStr,
			h.levelColor(record.Level), record.Level.String(), colorReset,
			prefix, record.Message,
		)
	} else {
		fmt.Fprintf(&b, "%s - %s - %s%s", timeStr, record.Level.String(), prefix, record.Message)
	}

	for _, a := range h.attrs {
		h.writeAttr(&b, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

// writeAttr appends " key=value", flattening nested groups into dotted keys.
func (h *colorHandler) writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, sub, ga)
		}
		return
	}

	key := group + a.Key
	if h.colored {
		if color, ok := coloredAttrKeys[a.Key]; ok {
			fmt.Fprintf(b, " %s=%s%v%s", key, color, a.Value, colorReset)
			return
		}
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value)
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := h.clone()
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return nh
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.group = h.group + name + "."
	return nh
}

func (h *colorHandler) clone() *colorHandler {
	nh := *h
	nh.attrs = slices.Clone(h.attrs)
	return &nh
}

func (h *colorHandler) levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorCyan
	}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (handler *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range handler.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handler *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range handler.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handler *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(handler.handlers))
	for i, h := range handler.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (handler *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(handler.handlers))
	for i, h := range handler.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
