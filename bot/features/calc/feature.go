package calc

import (
	"context"
	"fmt"
	"strings"

	"whatsbot/bot"
	"whatsbot/service"
)

// Feature evaluates integer arithmetic expressions in chat.
type Feature struct{}

func New() *Feature {
	return &Feature{}
}

func (f *Feature) Register(r *bot.Registry) {
	r.Register(&bot.Command{
		Name:        "calc",
		Aliases:     []string{"math"},
		Description: "Evaluate an arithmetic expression",
		Usage:       "!calc <expression>, e.g. !calc (2+3)*4",
		Handler:     f.handleCalc,
	})
}

func (f *Feature) handleCalc(ctx context.Context, m *bot.MessageContext) error {
	expr := strings.Join(m.Args, " ")
	if strings.TrimSpace(expr) == "" {
		return service.NewValidationError("give an expression, e.g. !calc (2+3)*4")
	}

	result, err := Evaluate(expr)
	if err != nil {
		return service.NewValidationError("can't evaluate that: %v", err)
	}
	return m.Reply(ctx, fmt.Sprintf("🧮 %s = %d", expr, result))
}
