package logpipe

import (
	"fmt"
	"strings"
)

// Level is the severity of a record. Each level is a distinct bit so levels
// can be OR-ed together into a filter mask.
type Level uint32

const (
	LevelInvalid Level = 0
	LevelTrace   Level = 1 << 0
	LevelDebug   Level = 1 << 1
	LevelInfo    Level = 1 << 2
	LevelWarn    Level = 1 << 3
	LevelError   Level = 1 << 4
	LevelFatal   Level = 1 << 5

	// LevelAll matches every valid level.
	LevelAll = LevelTrace | LevelDebug | LevelInfo | LevelWarn | LevelError | LevelFatal
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Level(%#x)", uint32(l))
	}
}

// Has reports whether mask l contains any bit of x.
func (l Level) Has(x Level) bool {
	return l&x != 0
}

func (l Level) color() string {
	switch l {
	case LevelTrace:
		return "\x1b[90m"
	case LevelDebug:
		return "\x1b[36m"
	case LevelInfo:
		return "\x1b[32m"
	case LevelWarn:
		return "\x1b[33m"
	case LevelError:
		return ansiRed
	case LevelFatal:
		return ansiBold + ansiRed
	default:
		return ""
	}
}

// ParseLevel maps a level name onto a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInvalid, fmt.Errorf("unknown log level %q", name)
	}
}

// ParseMask parses "all" or a comma separated level list such as "info,warn,error".
func ParseMask(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return LevelAll, nil
	}
	var mask Level
	for _, part := range strings.Split(s, ",") {
		lvl, err := ParseLevel(part)
		if err != nil {
			return LevelInvalid, err
		}
		mask |= lvl
	}
	return mask, nil
}
