package test

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// LoggerT is the subset of [testing.TB] used to write log messages.
type LoggerT interface {
	Helper()
	Log(...any)
}

// NewLogger returns a logger that writes each record to the test's log as a
// single line of the form "LEVEL message key=value ...".
func NewLogger(t LoggerT) *slog.Logger {
	return slog.New(&handler{t: t})
}

type handler struct {
	t      LoggerT
	prefix string
	attrs  []string
}

func (h *handler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *handler) Handle(_ context.Context, rec slog.Record) error {
	var buf strings.Builder

	buf.WriteString(rec.Level.String())
	buf.WriteByte(' ')
	buf.WriteString(rec.Message)

	for _, a := range h.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a)
	}

	rec.Attrs(func(a slog.Attr) bool {
		for _, s := range flatten(h.prefix, a) {
			buf.WriteByte(' ')
			buf.WriteString(s)
		}
		return true
	})

	h.t.Helper()
	h.t.Log(buf.String())

	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, flatten(h.prefix, a)...)
	}
	return &c
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// flatten renders a as key=value pairs, expanding groups into dotted keys.
func flatten(prefix string, a slog.Attr) []string {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		var pairs []string
		for _, m := range v.Group() {
			pairs = append(pairs, flatten(prefix, m)...)
		}
		return pairs
	}

	if a.Equal(slog.Attr{}) {
		return nil
	}

	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\r\n=\"") {
		s = strconv.Quote(s)
	}

	return []string{prefix + a.Key + "=" + s}
}
