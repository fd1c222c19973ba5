package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Notifier interface {
	SendMessage(msg string)
}

type TelegramHandler struct {
	next     slog.Handler
	notifier Notifier
	level    slog.Level
	attrs    []slog.Attr
	group    string
}

func NewTelegramHandler(next slog.Handler, notifier Notifier, level slog.Level) *TelegramHandler {
	return &TelegramHandler{
		next:     next,
		notifier: notifier,
		level:    level,
	}
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || level >= h.level
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && h.notifier != nil {
		h.notifier.SendMessage(h.format(r))
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &clone
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	if clone.group != "" {
		clone.group += "."
	}
	clone.group += name
	return &clone
}

// qualify prefixes key with the groups open at the time of the call.
func (h *TelegramHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *TelegramHandler) format(r slog.Record) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", r.Level.String(), r.Message))
	for _, a := range h.attrs {
		sb.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(fmt.Sprintf("\n%s: %s", h.qualify(a.Key), a.Value.String()))
		return true
	})
	return sb.String()
}
