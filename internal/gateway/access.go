package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"marketgate/internal/logger"
	"marketgate/internal/nav"
	"marketgate/internal/session"
	"marketgate/internal/telegram"
)

// consumeAccessRequest handles the introduction text of an unknown chat.
// Text that matches an already-minted token binds the chat immediately;
// anything else is forwarded to the admin as an access card.
func (g *Gateway) consumeAccessRequest(ctx context.Context, c tele.Context) error {
	chatID := c.Chat().ID
	text := strings.TrimSpace(c.Text())
	if text == "" {
		g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
		return c.Send(msgOnboarding)
	}

	known, err := g.store.TokenExists(ctx, text)
	if err != nil {
		logger.Error(ctx, "gateway", "access.token_check", slog.Any("err", err))
		g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
		return c.Send(msgBackendUnreachable)
	}
	if known {
		if err := g.store.Approve(ctx, chatID, text); err != nil {
			logger.Error(ctx, "gateway", "access.bind", slog.Any("err", err))
			g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
			return c.Send(msgBackendUnreachable)
		}
		logger.Info(ctx, "gateway", "access.token_bound", slog.Int64("chat_id", chatID))
		return c.Send(msgTokenActivated)
	}

	bot := g.Bot()
	if bot == nil {
		g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
		return c.Send(msgBackendUnreachable)
	}

	name := senderName(c.Sender())
	if _, err := bot.Send(tele.ChatID(g.cfg.Telegram.AdminID), fmt.Sprintf(accessCard, name, text), accessCardMarkup(chatID)); err != nil {
		logger.Error(ctx, "gateway", "access.card", slog.Any("err", err))
		g.sessions.Arm(chatID, session.Pending{Step: session.StepAccessRequest})
		return c.Send(msgBackendUnreachable)
	}

	logger.Info(ctx, "gateway", "access.requested", slog.Int64("chat_id", chatID))
	return c.Send(msgRequestSent)
}

// accessCardMarkup carries the requester's chat id inside each decision
// token, so the admin's tap alone identifies the target chat.
func accessCardMarkup(chatID int64) *tele.ReplyMarkup {
	value := strconv.FormatInt(chatID, 10)
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		telegram.DataButton("Allow", nav.New(nav.ActionAccess, nav.KeyAllow, value).Encode()),
		telegram.DataButton("Deny", nav.New(nav.ActionAccess, nav.KeyDeny, value).Encode()),
		telegram.DataButton("Block", nav.New(nav.ActionAccess, nav.KeyBlock, value).Encode()),
	}}}
}

// onAccessDecision resolves an admin's tap on an access card. The card is
// deleted on the first decision, so the request is single-use. Taps from
// anyone but the admin are ignored.
func (g *Gateway) onAccessDecision(ctx context.Context, c tele.Context, tok nav.Token) error {
	if c.Sender() == nil || c.Sender().ID != g.cfg.Telegram.AdminID {
		return ack(c, msgUnknownInput)
	}

	reqChat, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		logger.Warn(ctx, "gateway", "access.bad_chat", slog.String("value", tok.Value))
		return ack(c, msgUnknownInput)
	}

	switch tok.Key {
	case nav.KeyAllow:
		token := uuid.NewString()
		if err := g.store.Approve(ctx, reqChat, token); err != nil {
			logger.Error(ctx, "gateway", "access.approve", slog.Any("err", err))
			return alert(c, msgBackendUnreachable)
		}
		g.notify(ctx, reqChat, fmt.Sprintf(msgAccessGranted, token))
	case nav.KeyDeny:
		g.notify(ctx, reqChat, msgAccessDenied)
	case nav.KeyBlock:
		if err := g.store.Block(ctx, reqChat); err != nil {
			logger.Error(ctx, "gateway", "access.block", slog.Any("err", err))
			return alert(c, msgBackendUnreachable)
		}
		g.notify(ctx, reqChat, msgAccessBlocked)
	}

	logger.Info(ctx, "gateway", "access.decided",
		slog.String("cb_key", string(tok.Key)),
		slog.Int64("chat_id", reqChat),
	)

	if err := c.Delete(); err != nil {
		logger.Warn(ctx, "gateway", "access.card_delete", slog.Any("err", err))
	}
	return ack(c, "Done")
}

func senderName(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
