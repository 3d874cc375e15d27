package bot

import (
	"context"
	"strings"

	"go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
)

// Responder sends replies and reactions back into the chat the message
// came from. The gateway implements it; tests substitute a fake.
type Responder interface {
	Reply(ctx context.Context, msg *MessageContext, text string, mentions []string) error
	React(ctx context.Context, msg *MessageContext, emoji string) error
}

// MessageContext carries one inbound command through a handler.
type MessageContext struct {
	// Sender is the canonical user JID string, the economy account key
	Sender   string
	Chat     types.JID
	IsGroup  bool
	PushName string
	Args     []string

	// Mentions are the user JIDs tagged in the message body
	Mentions []string
	// QuotedSender is the author of the quoted message, if any
	QuotedSender string

	Event     *waEvents.Message
	responder Responder
}

// Reply sends a quoted text reply into the originating chat
func (m *MessageContext) Reply(ctx context.Context, text string) error {
	return m.responder.Reply(ctx, m, text, nil)
}

// ReplyMentions sends a reply that tags the given user JIDs
func (m *MessageContext) ReplyMentions(ctx context.Context, text string, mentions []string) error {
	return m.responder.Reply(ctx, m, text, mentions)
}

// React attaches an emoji reaction to the inbound message
func (m *MessageContext) React(ctx context.Context, emoji string) error {
	return m.responder.React(ctx, m, emoji)
}

// TargetUser resolves the user a command is aimed at: the first mention,
// else the author of the quoted message, else a bare phone number
// argument. Returns ok=false when no target can be resolved.
func (m *MessageContext) TargetUser() (string, bool) {
	if len(m.Mentions) > 0 {
		return m.Mentions[0], true
	}
	if m.QuotedSender != "" {
		return m.QuotedSender, true
	}
	for _, arg := range m.Args {
		digits := strings.TrimPrefix(arg, "+")
		// Phone numbers are at least 10 digits; shorter digit runs are
		// amounts, not targets.
		if len(digits) >= 10 && isDigits(digits) {
			return types.NewJID(digits, types.DefaultUserServer).String(), true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
