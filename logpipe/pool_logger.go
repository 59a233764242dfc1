package logpipe

import (
	"github.com/Swind/go-task-pool/core"
)

// PoolLogger adapts the context to core.Logger so worker pool warnings land
// in the same pipeline. Messages are taken verbatim; fields are appended as
// "{k: v}" and never run through the brace formatter.
func (c *LoggerContext) PoolLogger() core.Logger {
	return &poolLogger{c: c}
}

type poolLogger struct {
	c *LoggerContext
}

func (p *poolLogger) Debug(msg string, fields ...core.Field) { p.emit(LevelDebug, msg, fields) }
func (p *poolLogger) Info(msg string, fields ...core.Field)  { p.emit(LevelInfo, msg, fields) }
func (p *poolLogger) Warn(msg string, fields ...core.Field)  { p.emit(LevelWarn, msg, fields) }
func (p *poolLogger) Error(msg string, fields ...core.Field) { p.emit(LevelError, msg, fields) }

func (p *poolLogger) emit(level Level, msg string, fields []core.Field) {
	if !Enabled || p.c == nil || p.c.closed.Load() {
		return
	}
	if f := core.FormatFields(fields); f != "" {
		msg += " " + f
	}
	// emit <- Warn <- pool method
	file, line := caller(2)
	p.c.record(level, file, line, msg)
}
