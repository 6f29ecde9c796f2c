// Package gateway implements the conversational surface of the bot: access
// control, the per-market link catalog, inline product search, and product
// details. Handlers translate Telegram updates into parser backend calls and
// render the results back as messages and inline keyboards.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/backend"
	"marketgate/internal/config"
	"marketgate/internal/logger"
	"marketgate/internal/nav"
	"marketgate/internal/session"
	"marketgate/internal/store"
	"marketgate/internal/telegram"
)

// callbackHandler serves one parsed navigation token.
type callbackHandler func(ctx context.Context, c tele.Context, tok nav.Token) error

// Gateway wires the chat surface to the credential store and the parser
// backend.
type Gateway struct {
	cfg      *config.Config
	store    store.Store
	backend  *backend.Client
	sessions *session.Manager

	callbacks map[nav.Action]map[nav.Key]callbackHandler

	mu  sync.RWMutex
	bot *tele.Bot
}

// New builds a Gateway over the given dependencies.
func New(cfg *config.Config, st store.Store, bc *backend.Client) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		store:    st,
		backend:  bc,
		sessions: session.NewManager(),
	}
	g.callbacks = map[nav.Action]map[nav.Key]callbackHandler{
		nav.ActionAccess: {
			nav.KeyAllow: g.onAccessDecision,
			nav.KeyDeny:  g.onAccessDecision,
			nav.KeyBlock: g.onAccessDecision,
		},
		nav.ActionStore: {
			nav.KeyBrowse: g.onBrowse,
			nav.KeyList:   g.onStoreMenu,
			nav.KeySend:   g.onSendLink,
			nav.KeyDelete: g.onDeleteLink,
			nav.KeyAdd:    g.onAddPrompt,
		},
	}
	return g
}

// RunOptions assembles the transport options for telegram.Run: global
// middleware, the command registry, and the update routes.
func (g *Gateway) RunOptions() telegram.RunOptions {
	registry := telegram.NewRegistry()
	registry.RegisterCommand("/start", telegram.Command{
		Handler:     g.handleStart,
		Description: "Choose a store to manage",
	})

	routes := []telegram.Route{
		{Endpoint: tele.OnCallback, Handler: g.handleCallback},
		{Endpoint: tele.OnText, Handler: g.handleText},
		{Endpoint: tele.OnQuery, Handler: g.handleQuery},
	}
	for name, cmd := range registry.Commands() {
		routes = append(routes, telegram.Route{Endpoint: name, Handler: cmd.Handler})
	}

	return telegram.RunOptions{
		Config:   g.cfg,
		Registry: registry,
		Middlewares: []telegram.Middleware{
			{Name: "recover", Use: telegram.RecoverMiddleware},
			{Name: "logger", Use: telegram.LoggerMiddleware},
			{Name: "deny_gate", Use: telegram.DenyGateMiddleware(g.store)},
		},
		Routes:  routes,
		OnStart: g.onStart,
	}
}

func (g *Gateway) onStart(_ context.Context, bot *tele.Bot) error {
	g.mu.Lock()
	g.bot = bot
	g.mu.Unlock()
	return nil
}

// Bot returns the running bot handle, nil before OnStart.
func (g *Gateway) Bot() *tele.Bot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bot
}

// notify delivers a service message to an arbitrary chat, outside of any
// update being handled.
func (g *Gateway) notify(ctx context.Context, chatID int64, text string, opts ...interface{}) {
	bot := g.Bot()
	if bot == nil {
		logger.Warn(ctx, "gateway", "notify.skip", slog.Int64("chat_id", chatID))
		return
	}
	if _, err := bot.Send(tele.ChatID(chatID), text, opts...); err != nil {
		logger.Error(ctx, "gateway", "notify.fail",
			slog.Int64("chat_id", chatID),
			slog.Any("err", err),
		)
	}
}

// credential resolves the sender's backend token. The boolean is false when
// the chat has no binding; the caller is expected to stop handling.
func (g *Gateway) credential(ctx context.Context, chatID int64) (string, bool, error) {
	token, err := g.store.Lookup(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// ack answers a callback with a short toast, swallowing transport errors.
func ack(c tele.Context, text string) error {
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// alert answers a callback with a modal alert.
func alert(c tele.Context, text string) error {
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}
