package logpipe

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Hook observes one record during a drain. line holds the rendered display
// string; a hook may rewrite it and later hooks see the rewritten value.
// A hook may log into its own context; with a bounded OverflowBlock queue it
// must not fill that queue from inside the drain.
type Hook func(rec Record, line *string)

// Names of the built-in hooks, in registration order.
const (
	HookStdout     = "stdout"
	HookStrip      = "strip-control"
	HookLatestFile = "latest-file"
	HookUniqueFile = "unique-file"
)

// ColorMode decides whether StdoutHook keeps ANSI sequences.
type ColorMode int

const (
	// ColorAuto keeps colour only when the writer is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// StdoutHook prints each line to w.
func StdoutHook(w io.Writer, mode ColorMode) Hook {
	if w == nil {
		w = os.Stdout
	}
	color := useColor(w, mode)
	return func(_ Record, line *string) {
		s := *line
		if !color {
			s = text.StripEscape(s)
		}
		_, _ = io.WriteString(w, s+"\n")
	}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StripControlHook removes ANSI escape sequences from the line so that
// hooks registered after it write plain text.
func StripControlHook() Hook {
	return func(_ Record, line *string) {
		*line = text.StripEscape(*line)
	}
}

// FilterHook forwards only records whose level is in mask.
func FilterHook(mask Level, next Hook) Hook {
	return func(rec Record, line *string) {
		if mask.Has(rec.Level) {
			next(rec, line)
		}
	}
}

// WriterHook writes each line followed by a newline to w.
func WriterHook(w io.Writer) Hook {
	return func(_ Record, line *string) {
		_, _ = io.WriteString(w, *line+"\n")
	}
}
