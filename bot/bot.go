package bot

import (
	"context"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for the whatsmeow session store
	"github.com/mdp/qrterminal/v3"
	log "github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"whatsbot/bot/middleware"
	"whatsbot/config"
	"whatsbot/service"
)

// Gateway owns the WhatsApp connection and the command dispatch loop.
// It parses inbound messages, guards them with the rate limiter and the
// in-flight cap, and hands them to registered command handlers.
type Gateway struct {
	cfg      *config.Config
	client   *whatsmeow.Client
	registry *Registry
	accounts service.AccountService
	limiter  *middleware.RateLimiter

	// inflight caps concurrently running handlers; excess messages are
	// dropped, not queued
	inflight chan struct{}
}

// New creates the gateway with a Postgres-backed session store. The
// session store shares the economy database but manages its own tables.
func New(ctx context.Context, cfg *config.Config, registry *Registry, accounts service.AccountService, limiter *middleware.RateLimiter) (*Gateway, error) {
	container, err := sqlstore.New(ctx, "pgx", cfg.DatabaseURL, waLog.Stdout("Session", "WARN", true))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	return &Gateway{
		cfg:      cfg,
		client:   whatsmeow.NewClient(device, waLog.Stdout("WhatsApp", "WARN", true)),
		registry: registry,
		accounts: accounts,
		limiter:  limiter,
		inflight: make(chan struct{}, cfg.MaxInflight),
	}, nil
}

// Start connects to WhatsApp, pairing interactively when no session
// exists yet. Blocks until the connection is established or pairing
// fails.
func (g *Gateway) Start(ctx context.Context) error {
	g.client.AddEventHandler(g.handleEvent)

	if g.client.Store.ID != nil {
		if err := g.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		log.WithField("jid", g.client.Store.ID.String()).Info("WhatsApp connected")
		return nil
	}

	// No stored session: pair via phone code or QR.
	qrChan, err := g.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := g.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for pairing: %w", err)
	}

	if g.cfg.PairPhoneNumber != "" {
		code, err := g.client.PairPhone(ctx, g.cfg.PairPhoneNumber, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
		if err != nil {
			return fmt.Errorf("failed to request pairing code: %w", err)
		}
		log.WithField("code", code).Info("Enter this pairing code on your phone")
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			if g.cfg.PairPhoneNumber == "" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				log.Info("Scan the QR code with WhatsApp to log in")
			}
		case "success":
			log.Info("WhatsApp pairing successful")
			return nil
		default:
			log.WithField("event", evt.Event).Warn("Pairing event")
		}
	}
	return fmt.Errorf("pairing channel closed before login")
}

// Stop disconnects from WhatsApp
func (g *Gateway) Stop() {
	g.client.Disconnect()
	log.Info("WhatsApp disconnected")
}

func (g *Gateway) handleEvent(evt any) {
	msg, ok := evt.(*waEvents.Message)
	if !ok {
		return
	}
	if msg.Info.IsFromMe {
		return
	}

	select {
	case g.inflight <- struct{}{}:
		go func() {
			defer func() { <-g.inflight }()
			g.handleMessage(msg)
		}()
	default:
		log.WithField("sender", msg.Info.Sender.String()).Warn("Dropping message, too many handlers in flight")
	}
}

// handleMessage runs one inbound message through parse, guard, dispatch.
func (g *Gateway) handleMessage(msg *waEvents.Message) {
	body := extractText(msg.Message)
	name, args, ok := ParseCommand(body, g.cfg.CommandPrefix)
	if !ok {
		return
	}
	cmd := g.registry.Resolve(name)
	if cmd == nil {
		return
	}

	sender := msg.Info.Sender.ToNonAD().String()
	logger := log.WithFields(log.Fields{
		"command": cmd.Name,
		"sender":  sender,
		"chat":    msg.Info.Chat.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.OperationTimeout)
	defer cancel()

	mctx := &MessageContext{
		Sender:       sender,
		Chat:         msg.Info.Chat,
		IsGroup:      msg.Info.IsGroup,
		PushName:     msg.Info.PushName,
		Args:         args,
		Mentions:     mentionedJIDs(msg.Message),
		QuotedSender: quotedSender(msg.Message),
		Event:        msg,
		responder:    g,
	}

	if !g.limiter.Allow(sender) {
		logger.Warn("Rate limited")
		_ = mctx.React(ctx, "🐌")
		return
	}

	// Capability gate before any state is touched. The engine re-checks
	// on its admin operations; this keeps the error path cheap.
	if cmd.OwnerOnly && !g.cfg.IsOwner(sender) {
		_ = mctx.Reply(ctx, UserMessage(service.ErrNotOwner))
		return
	}
	if cmd.AdminOnly && !g.cfg.IsAdmin(sender) {
		_ = mctx.Reply(ctx, UserMessage(service.ErrNotAdmin))
		return
	}

	// Every command touch creates or refreshes the account.
	if _, err := g.accounts.EnsureAccount(ctx, sender); err != nil {
		logger.WithError(err).Error("Failed to ensure account")
		_ = mctx.Reply(ctx, UserMessage(err))
		return
	}

	err := middleware.Recover(func() error {
		return cmd.Handler(ctx, mctx)
	})
	if err != nil {
		logger.WithError(err).Warn("Command failed")
		_ = mctx.Reply(ctx, UserMessage(err))
		return
	}
	logger.Debug("Command handled")
}

// Reply sends a quoted text reply, optionally tagging mentioned users.
func (g *Gateway) Reply(ctx context.Context, msg *MessageContext, text string, mentions []string) error {
	ext := &waE2E.ExtendedTextMessage{
		Text: proto.String(text),
		ContextInfo: &waE2E.ContextInfo{
			StanzaID:      proto.String(msg.Event.Info.ID),
			Participant:   proto.String(msg.Event.Info.Sender.String()),
			QuotedMessage: msg.Event.Message,
		},
	}
	if len(mentions) > 0 {
		ext.ContextInfo.MentionedJID = mentions
	}

	_, err := g.client.SendMessage(ctx, msg.Chat, &waE2E.Message{ExtendedTextMessage: ext})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// React attaches an emoji reaction to the inbound message
func (g *Gateway) React(ctx context.Context, msg *MessageContext, emoji string) error {
	reaction := g.client.BuildReaction(msg.Chat, msg.Event.Info.Sender, msg.Event.Info.ID, emoji)
	if _, err := g.client.SendMessage(ctx, msg.Chat, reaction); err != nil {
		return fmt.Errorf("failed to send reaction: %w", err)
	}
	return nil
}

// extractText pulls the text body out of the message variants the bot
// understands. Media captions are not treated as commands.
func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	return msg.GetExtendedTextMessage().GetText()
}

func mentionedJIDs(msg *waE2E.Message) []string {
	raw := msg.GetExtendedTextMessage().GetContextInfo().GetMentionedJID()
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, jid := range raw {
		parsed, err := types.ParseJID(strings.TrimSpace(jid))
		if err != nil {
			continue
		}
		out = append(out, parsed.ToNonAD().String())
	}
	return out
}

func quotedSender(msg *waE2E.Message) string {
	info := msg.GetExtendedTextMessage().GetContextInfo()
	if info.GetQuotedMessage() == nil || info.GetParticipant() == "" {
		return ""
	}
	parsed, err := types.ParseJID(info.GetParticipant())
	if err != nil {
		return ""
	}
	return parsed.ToNonAD().String()
}
