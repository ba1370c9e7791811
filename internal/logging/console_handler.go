package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// consoleHandler renders records as "HH:MM:SS LEVEL message key=value ...",
// with ANSI level colors when the writer is a terminal.
type consoleHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
	group string
}

func newConsoleHandler(out io.Writer, level slog.Level) *consoleHandler {
	color := false
	if file, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd())
	}
	return &consoleHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
		color: color,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.levelLabel(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)

	writeAttr := func(attr slog.Attr) bool {
		if attr.Equal(slog.Attr{}) {
			return true
		}
		key := attr.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, attr.Value.Resolve().Any())
		return true
	}
	for _, attr := range h.attrs {
		writeAttr(attr)
	}
	record.Attrs(writeAttr)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	label := strings.ToUpper(level.String())
	if !h.color {
		return label
	}
	switch {
	case level >= slog.LevelError:
		return "\x1b[31m" + label + "\x1b[0m"
	case level >= slog.LevelWarn:
		return "\x1b[33m" + label + "\x1b[0m"
	case level >= slog.LevelInfo:
		return "\x1b[32m" + label + "\x1b[0m"
	default:
		return "\x1b[36m" + label + "\x1b[0m"
	}
}
