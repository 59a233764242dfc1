package logpipe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat marks a malformed message template.
var ErrFormat = errors.New("format error")

// Format expands a brace template.
//
// "{}" takes the next argument, "{N}" takes argument N, and an optional
// ":verb" suffix applies a fmt verb ("{:.2f}", "{1:x}"). "{{" and "}}" are
// literal braces. Unused arguments are ignored.
func Format(template string, args ...any) (string, error) {
	if strings.IndexAny(template, "{}") < 0 {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template) + 16*len(args))
	next := 0

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unmatched '{' at offset %d", ErrFormat, i)
			}
			field := template[i+1 : i+1+end]
			idx, verb, err := parseField(field, next)
			if err != nil {
				return "", err
			}
			if idx >= len(args) {
				return "", fmt.Errorf("%w: argument index %d out of range (%d given)", ErrFormat, idx, len(args))
			}
			if field == "" || field[0] == ':' {
				next++
			}
			fmt.Fprintf(&b, verb, args[idx])
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: unmatched '}' at offset %d", ErrFormat, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func parseField(field string, next int) (int, string, error) {
	index, spec, hasSpec := strings.Cut(field, ":")
	idx := next
	if index != "" {
		n, err := strconv.Atoi(index)
		if err != nil || n < 0 {
			return 0, "", fmt.Errorf("%w: invalid argument index %q", ErrFormat, index)
		}
		idx = n
	}
	if !hasSpec || spec == "" {
		return idx, "%v", nil
	}
	if strings.ContainsAny(spec, "%{}") {
		return 0, "", fmt.Errorf("%w: invalid format spec %q", ErrFormat, spec)
	}
	last := spec[len(spec)-1]
	if (last < 'a' || last > 'z') && (last < 'A' || last > 'Z') {
		spec += "v"
	}
	return idx, "%" + spec, nil
}

// formatMessage never fails: a bad template becomes the template followed
// by a bold red error marker.
func formatMessage(template string, args []any) (string, bool) {
	msg, err := Format(template, args...)
	if err != nil {
		return template + "\t" + ansiBold + ansiRed + "!<<< FORMAT ERROR: " + err.Error() + ansiReset, false
	}
	return msg, true
}
