package gateway

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/logger"
	"marketgate/internal/nav"
	"marketgate/internal/session"
	"marketgate/internal/telegram"
)

// handleCallback parses the navigation token carried by a tapped inline
// button and dispatches it. Unknown or malformed tokens get an inert ack so
// the button never spins forever.
func (g *Gateway) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	ctx := telegram.BuildContext(c)

	raw := strings.TrimPrefix(cb.Data, "\f")
	tok, err := nav.Parse(raw)
	if err != nil {
		logger.Warn(ctx, "gateway", "callback.malformed",
			slog.String("data", logger.SanitizeLimit(raw, 64)),
			slog.Any("err", err),
		)
		return ack(c, msgUnknownInput)
	}

	handler := g.callbacks[tok.Action][tok.Key]
	if handler == nil {
		logger.Warn(ctx, "gateway", "callback.unroutable",
			slog.String("cb_action", string(tok.Action)),
			slog.String("cb_key", string(tok.Key)),
		)
		return ack(c, msgUnknownInput)
	}

	name := "callback." + string(tok.Action) + "." + string(tok.Key)
	ctx = telegram.WithHandler(c, name)
	return telegram.HandleWithSummary(c, name, func() error {
		return handler(ctx, c, tok)
	})
}

// handleText routes free-form messages. An armed dialog step always wins;
// after that, messages carrying an inline keyboard are treated as picked
// search results; everything else is dropped.
func (g *Gateway) handleText(c tele.Context) error {
	ctx := telegram.BuildContext(c)
	chatID := c.Chat().ID

	if pending, ok := g.sessions.Take(chatID); ok {
		switch pending.Step {
		case session.StepAccessRequest:
			ctx = telegram.WithHandler(c, "text.access_request")
			return telegram.HandleWithSummary(c, "text.access_request", func() error {
				return g.consumeAccessRequest(ctx, c)
			})
		case session.StepAddLink:
			ctx = telegram.WithHandler(c, "text.add_link")
			return telegram.HandleWithSummary(c, "text.add_link", func() error {
				return g.consumeAddLink(ctx, c, pending.Market)
			})
		}
		logger.Warn(ctx, "gateway", "step.unknown", slog.String("step", string(pending.Step)))
		return nil
	}

	if market, ok := detailsMarket(c.Message()); ok {
		ctx = telegram.WithHandler(c, "text.details")
		return telegram.HandleWithSummary(c, "text.details", func() error {
			return g.onDetails(ctx, c, market)
		})
	}

	logger.Debug(ctx, "gateway", "text.unrouted",
		slog.String("text", logger.SanitizeLimit(c.Text(), 48)),
	)
	return nil
}

// detailsMarket recognizes a picked search result: a message whose inline
// keyboard was attached by this bot and whose first button carries a details
// token. The token value names the market the result came from.
func detailsMarket(msg *tele.Message) (string, bool) {
	if msg == nil || msg.ReplyMarkup == nil {
		return "", false
	}
	for _, row := range msg.ReplyMarkup.InlineKeyboard {
		for _, btn := range row {
			tok, err := nav.Parse(strings.TrimPrefix(btn.Data, "\f"))
			if err != nil {
				continue
			}
			if tok.Action == nav.ActionDetails && tok.Key == nav.KeyURL {
				return tok.Value, true
			}
		}
	}
	return "", false
}

// backendReply converts one backend call outcome into a chat reply: transport
// faults become a generic apology, rejections are relayed verbatim.
func backendReply(errText string, err error) (string, bool) {
	if err != nil {
		return msgBackendUnreachable, true
	}
	if errText != "" {
		return errText, true
	}
	return "", false
}
