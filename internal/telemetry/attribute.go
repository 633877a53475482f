package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/constraints"
)

// Attr is a telemetry attribute.
type Attr struct {
	typ attrType
	key string
	str string
	num uint64
}

// String returns a string attribute.
func String[T ~string](k string, v T) Attr {
	return Attr{
		typ: attrTypeString,
		key: k,
		str: string(v),
	}
}

// Stringer returns a string attribute. The value is the result of calling
// v.String().
func Stringer(k string, v fmt.Stringer) Attr {
	return String(k, v.String())
}

// Binary returns a string attribute containing v, represented as a Go string
// (with backslash escaped sequences). If the value is longer than 64 bytes, it
// is truncated to 64 bytes and the key is suffixed with "_truncated".
func Binary(k string, v []byte) Attr {
	if len(v) > 64 {
		v = v[:64]
		k += "_truncated"
	}

	return Attr{
		typ: attrTypeString,
		key: k,
		str: strconv.QuoteToASCII(string(v)),
	}
}

// Type returns a string attribute set to the name of the type of v.
func Type(k string, v any) Attr {
	t := reflect.TypeOf(v)
	if t == nil {
		return String(k, "<nil>")
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return String(k, t.String())
}

// Bool returns a boolean attribute.
func Bool[T ~bool](k string, v T) Attr {
	var n uint64
	if v {
		n = 1
	}

	return Attr{
		typ: attrTypeBool,
		key: k,
		num: n,
	}
}

// Int returns an int64 attribute.
func Int[T constraints.Integer](k string, v T) Attr {
	return Attr{
		typ: attrTypeInt64,
		key: k,
		num: uint64(v),
	}
}

// Float returns a float64 attribute.
func Float[T constraints.Float](k string, v T) Attr {
	return Attr{
		typ: attrTypeFloat64,
		key: k,
		num: math.Float64bits(float64(v)),
	}
}

// Time returns a string attribute containing v in [time.RFC3339Nano] format.
func Time(k string, v time.Time) Attr {
	return String(k, v.Format(time.RFC3339Nano))
}

// Duration returns a string attributing containing v in human readable format.
func Duration(k string, v time.Duration) Attr {
	return String(k, v.String())
}

func (a Attr) otelAttr(ns string) (attribute.KeyValue, bool) {
	k := a.key
	if ns != "" {
		k = ns + "." + k
	}

	switch a.typ {
	case attrTypeNone:
		return attribute.KeyValue{}, false
	case attrTypeString:
		return attribute.String(k, a.str), true
	case attrTypeBool:
		return attribute.Bool(k, a.num != 0), true
	case attrTypeInt64:
		return attribute.Int64(k, int64(a.num)), true
	case attrTypeFloat64:
		return attribute.Float64(k, math.Float64frombits(a.num)), true
	default:
		panic("unknown attribute type")
	}
}

func (a Attr) slogAttr() (slog.Attr, bool) {
	switch a.typ {
	case attrTypeNone:
		return slog.Attr{}, false
	case attrTypeString:
		return slog.String(a.key, a.str), true
	case attrTypeBool:
		return slog.Bool(a.key, a.num != 0), true
	case attrTypeInt64:
		return slog.Int64(a.key, int64(a.num)), true
	case attrTypeFloat64:
		return slog.Float64(a.key, math.Float64frombits(a.num)), true
	default:
		panic("unknown attribute type")
	}
}

type attrType uint8

const (
	attrTypeNone attrType = iota
	attrTypeString
	attrTypeBool
	attrTypeInt64
	attrTypeFloat64
)

// attrSet is a set of attributes within a namespace.
type attrSet struct {
	Namespace string
	Attrs     []Attr
}

// ForSpan returns the attributes as OpenTelemetry key/value pairs, prefixed
// with the namespace.
func (s attrSet) ForSpan() []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(s.Attrs))

	for _, a := range s.Attrs {
		if kv, ok := a.otelAttr(s.Namespace); ok {
			kvs = append(kvs, kv)
		}
	}

	return kvs
}

// ForLogger returns the attributes as arguments for an [slog.Logger], grouped
// under the namespace.
func (s attrSet) ForLogger(extra ...any) []any {
	attrs := make([]any, 0, len(s.Attrs))

	for _, a := range s.Attrs {
		if attr, ok := a.slogAttr(); ok {
			attrs = append(attrs, attr)
		}
	}

	if len(attrs) != 0 && s.Namespace != "" {
		attrs = []any{slog.Group(s.Namespace, attrs...)}
	}

	return append(attrs, extra...)
}

// If returns attr if cond is true, otherwise it returns an empty attribute
// that is omitted from all telemetry.
func If(cond bool, attr Attr) Attr {
	if cond {
		return attr
	}
	return Attr{}
}
