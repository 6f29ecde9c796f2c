package telegram

import (
	"log/slog"
	"runtime/debug"
	"time"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/logger"
	"marketgate/internal/store"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(BuildContext(c), "tg", "panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// LoggerMiddleware builds the per-update logging context and logs a receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := BuildContext(c)
		attrs := []slog.Attr{slog.String("status", "ok")}
		if user := c.Sender(); user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		switch {
		case c.Callback() != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Callback().Data, 128)))
		case c.Query() != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Query().Text, 128)))
		case c.Message() != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 128)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)
		return next(c)
	}
}

// DenyGateMiddleware drops every update from deny-listed chats before any
// other handler runs. Denied chats get silence, not an explanation.
func DenyGateMiddleware(st store.Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			ctx := BuildContext(c)
			denied, err := st.IsDenied(ctx, sender.ID)
			if err != nil {
				// The deny-list is a blacklist; unknown chats are still
				// gated by the credential check, so fail open.
				logger.Warn(ctx, "tg", "deny_gate.check_failed",
					slog.String("err", err.Error()),
				)
				return next(c)
			}
			if denied {
				logger.Info(ctx, "tg", "deny_gate.dropped",
					slog.Int64("user_id", sender.ID),
				)
				return nil
			}
			return next(c)
		}
	}
}

// HandleWithSummary runs fn and logs a single per-handler summary line.
func HandleWithSummary(c tele.Context, handlerName string, fn func() error) error {
	start := time.Now()
	ctx := WithHandler(c, handlerName)
	err := fn()

	status := "ok"
	if err != nil {
		status = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
	return err
}
