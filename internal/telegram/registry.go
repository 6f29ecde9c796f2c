package telegram

import (
	"context"
	"log/slog"
	"sort"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/logger"
)

// Command represents a bot command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
}

// Registry holds the bot's commands and exposes them to the command menu.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// RegisterCommand adds a command. Names must carry the slash prefix.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if name == "" || name[0] != '/' || cmd.Handler == nil {
		logger.Warn(context.Background(), "tg.wire", "register.command.skip",
			slog.String("name", name),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(context.Background(), "tg.wire", "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// SyncCommandMenu pushes the visible commands to Telegram's command menu.
func (r *Registry) SyncCommandMenu(bot *tele.Bot) {
	var list []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden || cmd.Description == "" {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	if err := bot.SetCommands(list); err != nil {
		logger.Warn(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
