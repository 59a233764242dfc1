package logpipe

import (
	"strconv"
	"strings"
	"time"
)

// displayTimeFormat matches wall-clock time with nanoseconds.
const displayTimeFormat = "15:04:05.000000000"

// Record is a single log message. It is a value: once built it is not
// modified, and each hook receives its own copy.
type Record struct {
	Level   Level
	Time    time.Time
	File    string
	Line    int
	Message string
}

// Render builds the display line handed to hooks:
//
//	[15:04:05.000000000] [main.go:42] [ info ]: message
//
// The level name is wrapped in its ANSI colour.
func (r Record) Render() string {
	var b strings.Builder
	b.Grow(48 + len(r.File) + len(r.Message))

	b.WriteByte('[')
	b.WriteString(r.Time.Format(displayTimeFormat))
	b.WriteString("] [")
	b.WriteString(r.File)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(r.Line))
	b.WriteString("] [ ")
	if c := r.Level.color(); c != "" {
		b.WriteString(c)
		b.WriteString(r.Level.String())
		b.WriteString(ansiReset)
	} else {
		b.WriteString(r.Level.String())
	}
	b.WriteString(" ]: ")
	b.WriteString(r.Message)
	return b.String()
}
