package ping

import (
	"context"
	"fmt"
	"time"

	"whatsbot/bot"
)

// Feature answers !ping with the bot's processing latency.
type Feature struct{}

func New() *Feature {
	return &Feature{}
}

func (f *Feature) Register(r *bot.Registry) {
	r.Register(&bot.Command{
		Name:        "ping",
		Description: "Check that the bot is alive",
		Usage:       "!ping",
		Handler:     f.handlePing,
	})
}

func (f *Feature) handlePing(ctx context.Context, m *bot.MessageContext) error {
	_ = m.React(ctx, "🏓")

	latency := time.Duration(0)
	if m.Event != nil {
		latency = time.Since(m.Event.Info.Timestamp).Round(time.Millisecond)
	}
	if latency <= 0 {
		return m.Reply(ctx, "🏓 Pong!")
	}
	return m.Reply(ctx, fmt.Sprintf("🏓 Pong! (%s)", latency))
}
