package logpipe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// SlogHandler returns a slog.Handler that feeds records into the context.
// Attributes are appended to the message as key=value pairs.
func (c *LoggerContext) SlogHandler() slog.Handler {
	return &slogHandler{c: c}
}

type slogHandler struct {
	c      *LoggerContext
	attrs  string // pre-rendered WithAttrs output
	groups []string
}

func (h *slogHandler) Enabled(context.Context, slog.Level) bool {
	return Enabled && h.c != nil && !h.c.closed.Load()
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	file, line := "???", 0
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		file, line = filepath.Base(f.File), f.Line
	}

	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})

	h.c.record(fromSlogLevel(r.Level), file, line, b.String())
	return nil
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Any())
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		writeAttr(&b, prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func fromSlogLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError+4:
		return LevelFatal
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	case l >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}
