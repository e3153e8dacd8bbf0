// Package lineproto turns text points into insert requests.
//
// A point is one line:
//
//	table[,tag=value...] field=value[,field=value...] [timestamp]
//
// Field values are floats (1.5), signed integers (10i), unsigned integers
// (10u), booleans (t, true, f, false) or double-quoted strings. Commas,
// spaces and '=' in names and tag values are escaped with a backslash.
// Lines starting with '#' are comments.
package lineproto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tuannm99/novaingest/internal/record"
)

var (
	ErrSyntax    = errors.New("lineproto: syntax error")
	ErrFieldType = errors.New("lineproto: field type differs from earlier rows")
)

// TimestampColumn is the name of the generated timestamp column.
const TimestampColumn = "ts"

type Precision uint8

const (
	Second Precision = iota
	Millisecond
	Microsecond
	Nanosecond
)

func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "s":
		return Second, nil
	case "ms", "":
		return Millisecond, nil
	case "us":
		return Microsecond, nil
	case "ns":
		return Nanosecond, nil
	}
	return 0, fmt.Errorf("lineproto: unknown precision %q", s)
}

func (p Precision) String() string {
	return [...]string{"s", "ms", "us", "ns"}[p]
}

func (p Precision) fromTime(t time.Time) int64 {
	switch p {
	case Second:
		return t.Unix()
	case Microsecond:
		return t.UnixMicro()
	case Nanosecond:
		return t.UnixNano()
	}
	return t.UnixMilli()
}

func (p Precision) values(ts []int64) record.Values {
	switch p {
	case Second:
		return record.TimestampSecondValues(ts)
	case Microsecond:
		return record.TimestampMicrosecondValues(ts)
	case Nanosecond:
		return record.TimestampNanosecondValues(ts)
	}
	return record.TimestampMillisecondValues(ts)
}

// Point is one parsed line.
type Point struct {
	Table  string
	Tags   []Tag
	Fields []Field
	// Time is zero-valued with HasTime false when the line had no timestamp.
	Time    int64
	HasTime bool
}

type Tag struct {
	Key, Value string
}

// Field.Value is one of bool, int64, uint64, float64, string.
type Field struct {
	Key   string
	Value any
}

// ParseLine parses a single point. It returns nil, nil for blank and
// comment lines.
func ParseLine(line string) (*Point, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	parts := lo.Filter(split(line, ' ', true), func(s string, _ int) bool { return s != "" })
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: want 'table[,tags] fields [timestamp]', got %d sections", ErrSyntax, len(parts))
	}

	p := &Point{}
	head := split(parts[0], ',', false)
	p.Table = unescape(head[0])
	if p.Table == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrSyntax)
	}
	for _, kv := range head[1:] {
		k, v, err := splitKV(kv)
		if err != nil {
			return nil, err
		}
		p.Tags = append(p.Tags, Tag{Key: k, Value: unescape(v)})
	}

	for _, kv := range split(parts[1], ',', true) {
		k, raw, err := splitKV(kv)
		if err != nil {
			return nil, err
		}
		v, err := parseFieldValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		p.Fields = append(p.Fields, Field{Key: k, Value: v})
	}

	if len(parts) == 3 {
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q", ErrSyntax, parts[2])
		}
		p.Time, p.HasTime = ts, true
	}
	return p, nil
}

// split cuts s at every unescaped sep. With quotes set, separators inside
// double quotes are kept.
func split(s string, sep byte, quotes bool) []string {
	var (
		out     []string
		start   int
		escaped bool
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case quotes && c == '"':
			inQuote = !inQuote
		case c == sep && !inQuote:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func splitKV(s string) (string, string, error) {
	parts := split(s, '=', true)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q is not key=value", ErrSyntax, s)
	}
	k := unescape(parts[0])
	v := strings.Join(parts[1:], "=")
	if k == "" || v == "" {
		return "", "", fmt.Errorf("%w: %q is not key=value", ErrSyntax, s)
	}
	return k, v, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func parseFieldValue(raw string) (any, error) {
	switch raw {
	case "t", "T", "true", "True", "TRUE":
		return true, nil
	case "f", "F", "false", "False", "FALSE":
		return false, nil
	}

	if raw[0] == '"' {
		if len(raw) < 2 || raw[len(raw)-1] != '"' {
			return nil, fmt.Errorf("%w: unterminated string", ErrSyntax)
		}
		return unescape(raw[1 : len(raw)-1]), nil
	}

	switch raw[len(raw)-1] {
	case 'i':
		v, err := strconv.ParseInt(raw[:len(raw)-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %q", ErrSyntax, raw)
		}
		return v, nil
	case 'u':
		v, err := strconv.ParseUint(raw[:len(raw)-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: unsigned %q", ErrSyntax, raw)
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: value %q", ErrSyntax, raw)
	}
	return v, nil
}

func dataTypeOf(v any) record.DataType {
	switch v.(type) {
	case bool:
		return record.Boolean
	case int64:
		return record.Int64
	case uint64:
		return record.UInt64
	case string:
		return record.String
	}
	return record.Float64
}
