package joke

import (
	"context"
	"math/rand/v2"

	"whatsbot/bot"
)

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"I told my wallet a joke about inflation. It didn't find it funny, but it did appreciate it.",
	"A SQL query walks into a bar, walks up to two tables and asks: \"Can I join you?\"",
	"Why did the developer go broke? Because he used up all his cache.",
	"There are only two hard things in computer science: cache invalidation, naming things, and off-by-one errors.",
	"My bank called about suspicious activity on my account. Apparently saving money counts.",
	"Why don't robbers target the bank command? Too much interest.",
	"I would tell you a UDP joke, but you might not get it.",
	"How do you comfort a JavaScript developer? You console them.",
	"Why did the economy bot get a promotion? It had outstanding balance.",
}

// Feature tells a random joke.
type Feature struct {
	pick func(n int) int
}

func New() *Feature {
	return &Feature{pick: rand.IntN}
}

func (f *Feature) Register(r *bot.Registry) {
	r.Register(&bot.Command{
		Name:        "joke",
		Description: "Tell a random joke",
		Usage:       "!joke",
		Handler:     f.handleJoke,
	})
}

func (f *Feature) handleJoke(ctx context.Context, m *bot.MessageContext) error {
	return m.Reply(ctx, "😄 "+jokes[f.pick(len(jokes))])
}
