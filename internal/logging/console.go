package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// consoleTimeFormat mirrors the "[time] LEVEL: message" line operators
// are used to reading from the file log of older releases.
const consoleTimeFormat = "2006-01-02 15:04:05,000"

// consoleHandler writes one "[time] LEVEL: msg key=value ..." line per record.
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string // group prefix for attribute keys
	styles map[string]lipgloss.Style
}

func newConsoleHandler(w io.Writer, level slog.Leveler, color bool) *consoleHandler {
	h := &consoleHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
	if color {
		r := lipgloss.NewRenderer(w)
		h.styles = map[string]lipgloss.Style{
			LevelDebug:    r.NewStyle().Foreground(lipgloss.Color("8")),
			LevelInfo:     r.NewStyle().Foreground(lipgloss.Color("4")),
			LevelWarn:     r.NewStyle().Foreground(lipgloss.Color("3")),
			LevelError:    r.NewStyle().Foreground(lipgloss.Color("1")),
			LevelCritical: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		}
	}
	return h
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(r.Time.Format(consoleTimeFormat))
	sb.WriteString("] ")
	sb.WriteString(h.renderLevel(levelName(r.Level)))
	sb.WriteString(": ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *consoleHandler) renderLevel(name string) string {
	if style, ok := h.styles[name]; ok {
		return style.Render(name)
	}
	return name
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix + a.Key + "."
		if a.Key == "" {
			groupPrefix = prefix
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, groupPrefix, ga)
		}
		return
	}
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"=") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(sb, " %s%s=%s", prefix, a.Key, value)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		prefixed = append(prefixed, a)
	}
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), prefixed...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// fanoutHandler forwards every record to each wrapped handler that accepts it.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("log handler failed: %v", errs)
	}
	return nil
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}
