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

// onBrowse replaces the current message with the tracked-link listing of the
// chosen market.
func (g *Gateway) onBrowse(ctx context.Context, c tele.Context, tok nav.Token) error {
	market := tok.Value
	if !g.knownMarket(market) {
		return ack(c, msgUnknownInput)
	}
	// Reaching the listing ends any capture dialog (e.g. the Finish button of
	// the add-link flow).
	g.sessions.Clear(c.Chat().ID)

	token, bound, err := g.credential(ctx, c.Sender().ID)
	if err != nil {
		logger.Error(ctx, "gateway", "browse.lookup", slog.Any("err", err))
		return alert(c, msgBackendUnreachable)
	}
	if !bound {
		return alert(c, msgNoAccess)
	}

	items, errText, err := g.backend.ListItems(ctx, market, token)
	if err != nil {
		return alert(c, msgBackendUnreachable)
	}
	// A backend rejection (e.g. a revoked token) replaces the listing body,
	// keyboard and all.
	if errText != "" {
		if err := c.Edit(errText); err != nil {
			return err
		}
		return ack(c, "")
	}

	logger.Info(ctx, "gateway", "catalog.browse",
		slog.String("market", market),
		slog.Int("items", len(items)),
	)
	if err := c.Edit(msgListingHeader, buildListing(market, items)); err != nil {
		return err
	}
	return ack(c, "")
}

// onSendLink answers with the full link text of the tapped item row. Button
// captions get truncated by the client, the alert shows the whole value.
func (g *Gateway) onSendLink(_ context.Context, c tele.Context, tok nav.Token) error {
	idx, err := tok.Index()
	if err != nil {
		return ack(c, msgUnknownInput)
	}
	rows := callbackKeyboard(c)
	if idx < 0 || idx >= len(rows) || !isItemRow(rows[idx]) {
		return ack(c, msgUnknownInput)
	}
	return alert(c, rows[idx][0].Text)
}

// onDeleteLink asks the backend to drop the tapped link and, on success,
// removes its row and renumbers the rest of the listing in place.
func (g *Gateway) onDeleteLink(ctx context.Context, c tele.Context, tok nav.Token) error {
	market, idx, err := nav.SplitMarketIndex(tok.Value)
	if err != nil || !g.knownMarket(market) {
		return ack(c, msgUnknownInput)
	}

	rows := callbackKeyboard(c)
	if idx < 0 || idx >= len(rows) || !isItemRow(rows[idx]) {
		return ack(c, msgUnknownInput)
	}
	link := rows[idx][0].Text

	token, bound, err := g.credential(ctx, c.Sender().ID)
	if err != nil {
		logger.Error(ctx, "gateway", "delete.lookup", slog.Any("err", err))
		return alert(c, msgBackendUnreachable)
	}
	if !bound {
		return alert(c, msgNoAccess)
	}

	res, errText, err := g.backend.DeleteItem(ctx, market, token, link)
	if reply, bad := backendReply(errText, err); bad {
		return alert(c, reply)
	}

	logger.Info(ctx, "gateway", "catalog.delete",
		slog.String("market", market),
		slog.Bool("success", res.Success),
	)

	if res.Success {
		updated := &tele.ReplyMarkup{InlineKeyboard: removeItemRow(rows, market, idx)}
		if bot := g.Bot(); bot != nil {
			if _, err := bot.EditReplyMarkup(c.Callback().Message, updated); err != nil {
				logger.Warn(ctx, "gateway", "catalog.renumber", slog.Any("err", err))
			}
		}
	}
	return alert(c, res.Message)
}

// onAddPrompt arms the add-link step for the market and turns the listing
// into the capture prompt.
func (g *Gateway) onAddPrompt(_ context.Context, c tele.Context, tok nav.Token) error {
	market := tok.Value
	if !g.knownMarket(market) {
		return ack(c, msgUnknownInput)
	}

	g.sessions.Arm(c.Chat().ID, session.Pending{Step: session.StepAddLink, Market: market})
	if err := c.Edit(msgAddPrompt, g.finishMarkup(market)); err != nil {
		return err
	}
	return ack(c, "")
}

// consumeAddLink submits the captured link and re-arms the step, so the user
// can keep pasting links until they tap Finish.
func (g *Gateway) consumeAddLink(ctx context.Context, c tele.Context, market string) error {
	chatID := c.Chat().ID
	rearm := func() {
		g.sessions.Arm(chatID, session.Pending{Step: session.StepAddLink, Market: market})
	}

	token, bound, err := g.credential(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "gateway", "add.lookup", slog.Any("err", err))
		rearm()
		return c.Send(msgBackendUnreachable)
	}
	if !bound {
		return c.Send(msgNoAccess)
	}

	errText, err := g.backend.AddItem(ctx, market, token, c.Text())
	if reply, bad := backendReply(errText, err); bad {
		rearm()
		return c.Send(reply, g.finishMarkup(market))
	}

	logger.Info(ctx, "gateway", "catalog.add", slog.String("market", market))
	rearm()
	return c.Send(msgLinkAdded, g.finishMarkup(market))
}

func (g *Gateway) finishMarkup(market string) *tele.ReplyMarkup {
	return telegram.SingleColumn(telegram.DataButton(
		btnFinish,
		nav.New(nav.ActionStore, nav.KeyBrowse, market).Encode(),
	))
}

// callbackKeyboard returns the inline keyboard of the message the callback
// was attached to, nil when there is none.
func callbackKeyboard(c tele.Context) [][]tele.InlineButton {
	cb := c.Callback()
	if cb == nil || cb.Message == nil || cb.Message.ReplyMarkup == nil {
		return nil
	}
	return cb.Message.ReplyMarkup.InlineKeyboard
}
