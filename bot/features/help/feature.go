package help

import (
	"context"
	"fmt"
	"strings"

	"whatsbot/bot"
	"whatsbot/config"
)

// Feature renders the command list from the live registry, so newly
// registered commands show up without touching this package.
type Feature struct {
	cfg      *config.Config
	registry *bot.Registry
}

func New(cfg *config.Config) *Feature {
	return &Feature{cfg: cfg}
}

func (f *Feature) Register(r *bot.Registry) {
	f.registry = r
	r.Register(&bot.Command{
		Name:        "help",
		Aliases:     []string{"commands"},
		Description: "List the available commands",
		Usage:       "!help [command]",
		Handler:     f.handleHelp,
	})
}

func (f *Feature) handleHelp(ctx context.Context, m *bot.MessageContext) error {
	if len(m.Args) > 0 {
		return f.replyCommandDetail(ctx, m, m.Args[0])
	}

	isAdmin := f.cfg.IsAdmin(m.Sender)
	isOwner := f.cfg.IsOwner(m.Sender)

	var b strings.Builder
	b.WriteString("🤖 *Commands*\n")
	for _, cmd := range f.registry.Commands() {
		if cmd.OwnerOnly && !isOwner {
			continue
		}
		if cmd.AdminOnly && !isAdmin {
			continue
		}
		fmt.Fprintf(&b, "• %s%s — %s\n", f.cfg.CommandPrefix, cmd.Name, cmd.Description)
	}
	fmt.Fprintf(&b, "\nDetails: %shelp <command>", f.cfg.CommandPrefix)
	return m.Reply(ctx, b.String())
}

func (f *Feature) replyCommandDetail(ctx context.Context, m *bot.MessageContext, name string) error {
	cmd := f.registry.Resolve(strings.TrimPrefix(name, f.cfg.CommandPrefix))
	if cmd == nil {
		return m.Reply(ctx, fmt.Sprintf("❓ Unknown command %q. Try %shelp.", name, f.cfg.CommandPrefix))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s%s* — %s\n", f.cfg.CommandPrefix, cmd.Name, cmd.Description)
	if cmd.Usage != "" {
		fmt.Fprintf(&b, "Usage: %s\n", cmd.Usage)
	}
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.OwnerOnly {
		b.WriteString("Owner only.\n")
	} else if cmd.AdminOnly {
		b.WriteString("Admin only.\n")
	}
	return m.Reply(ctx, strings.TrimRight(b.String(), "\n"))
}
