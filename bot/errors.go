package bot

import (
	"errors"
	"fmt"

	"whatsbot/bot/common"
	"whatsbot/service"
)

// UserMessage translates an engine error into a reply a chat user can
// act on. Unknown errors get a generic apology; the real error is logged
// by the dispatcher, never leaked into the chat.
func UserMessage(err error) string {
	var validationErr *service.ValidationError
	var fundsErr *service.InsufficientFundsError
	var cooldownErr *service.CooldownActiveError

	switch {
	case errors.As(err, &validationErr):
		return "❌ " + validationErr.Message
	case errors.As(err, &fundsErr):
		return fmt.Sprintf("❌ Not enough funds in your %s: you have %s but need %s.",
			fundsErr.Source, common.FormatAmount(fundsErr.Have), common.FormatAmount(fundsErr.Need))
	case errors.As(err, &cooldownErr):
		return fmt.Sprintf("⏳ You can use %s again in %s.",
			cooldownErr.Action, common.FormatDuration(cooldownErr.Remaining))
	case errors.Is(err, service.ErrOperationInProgress):
		return "⏳ Easy there, your previous command is still running."
	case errors.Is(err, service.ErrSelfTarget):
		return "❌ You cannot target yourself with that."
	case errors.Is(err, service.ErrTargetNotFound):
		return "❌ That user doesn't have an account yet. They need to use a command first."
	case errors.Is(err, service.ErrNotAdmin):
		return "🚫 That command is for admins only."
	case errors.Is(err, service.ErrNotOwner):
		return "🚫 That command is for the bot owner only."
	default:
		return "⚠️ Something went wrong. Please try again."
	}
}
