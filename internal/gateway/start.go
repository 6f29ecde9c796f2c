package gateway

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/logger"
	"marketgate/internal/nav"
	"marketgate/internal/session"
	"marketgate/internal/telegram"
)

// handleStart greets a bound chat with the store menu; an unknown chat is
// walked into the access flow instead.
func (g *Gateway) handleStart(c tele.Context) error {
	ctx := telegram.WithHandler(c, "start")
	return telegram.HandleWithSummary(c, "start", func() error {
		chatID := c.Chat().ID

		_, bound, err := g.credential(ctx, chatID)
		if err != nil {
			logger.Error(ctx, "gateway", "start.lookup", slog.Any("err", err))
			return c.Send(msgBackendUnreachable)
		}
		if !bound {
			g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
			return c.Send(msgOnboarding)
		}

		g.sessions.Clear(chatID)
		return c.Send(msgChooseStore, g.storeMenu())
	})
}

// storeMenu lists every configured market as a browse button.
func (g *Gateway) storeMenu() *tele.ReplyMarkup {
	buttons := make([]tele.InlineButton, 0, len(g.cfg.Markets))
	for _, m := range g.cfg.Markets {
		buttons = append(buttons, telegram.DataButton(
			m.Title,
			nav.New(nav.ActionStore, nav.KeyBrowse, m.Prefix).Encode(),
		))
	}
	return telegram.SingleColumn(buttons...)
}

// knownMarket guards callback payloads against markets that are no longer
// configured.
func (g *Gateway) knownMarket(market string) bool {
	for _, m := range g.cfg.Markets {
		if m.Prefix == market {
			return true
		}
	}
	return false
}

// onStoreMenu swaps the current message back to the store menu.
func (g *Gateway) onStoreMenu(_ context.Context, c tele.Context, _ nav.Token) error {
	if err := c.Edit(msgChooseStore, g.storeMenu()); err != nil {
		return err
	}
	return ack(c, "")
}
