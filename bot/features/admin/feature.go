package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"whatsbot/bot"
	"whatsbot/bot/common"
	"whatsbot/config"
	"whatsbot/service"
)

// Feature wires the admin economy commands. The engine re-checks the
// admin/owner capability on every operation; these handlers only parse.
type Feature struct {
	cfg      *config.Config
	economy  service.EconomyService
	settings service.SettingsService
}

func New(cfg *config.Config, economy service.EconomyService, settings service.SettingsService) *Feature {
	return &Feature{
		cfg:      cfg,
		economy:  economy,
		settings: settings,
	}
}

// Register adds all admin commands to the registry
func (f *Feature) Register(r *bot.Registry) {
	r.Register(&bot.Command{
		Name:        "ecosettings",
		Description: "Show or change the economy settings",
		Usage:       "!ecosettings [key value]",
		AdminOnly:   true,
		Handler:     f.handleSettings,
	})
	r.Register(&bot.Command{
		Name:        "ecoaddmoney",
		Aliases:     []string{"ecogive"},
		Description: "Add money to a user's wallet",
		Usage:       "!ecoaddmoney @user <amount>",
		AdminOnly:   true,
		Handler:     f.handleAddMoney,
	})
	r.Register(&bot.Command{
		Name:        "ecoremovemoney",
		Description: "Remove money from a user's wallet",
		Usage:       "!ecoremovemoney @user <amount>",
		AdminOnly:   true,
		Handler:     f.handleRemoveMoney,
	})
	r.Register(&bot.Command{
		Name:        "ecosetbalance",
		Description: "Set a user's wallet balance",
		Usage:       "!ecosetbalance @user <amount>",
		AdminOnly:   true,
		Handler:     f.handleSetBalance,
	})
	r.Register(&bot.Command{
		Name:        "ecoreset",
		Description: "Reset every account and purge the ledger",
		Usage:       "!ecoreset confirm [password]",
		OwnerOnly:   true,
		Handler:     f.handleReset,
	})
}

func (f *Feature) handleSettings(ctx context.Context, m *bot.MessageContext) error {
	switch len(m.Args) {
	case 0:
		values := f.settings.All()
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("⚙️ *Economy settings*\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "• %s = %s\n", key, values[key])
		}
		b.WriteString("\nChange with: !ecosettings <key> <value>")
		return m.Reply(ctx, b.String())
	case 2:
		key, value := m.Args[0], m.Args[1]
		if err := f.settings.Set(ctx, key, value); err != nil {
			return err
		}
		return m.Reply(ctx, fmt.Sprintf("✅ %s is now %s. Applies to all new operations immediately.", key, value))
	default:
		return service.NewValidationError("usage: !ecosettings [key value]")
	}
}

func (f *Feature) handleAddMoney(ctx context.Context, m *bot.MessageContext) error {
	target, amount, err := parseTargetAndAmount(m)
	if err != nil {
		return err
	}
	result, err := f.economy.AdminAdd(ctx, m.Sender, target, amount)
	if err != nil {
		return err
	}
	symbol := f.settings.Snapshot().CurrencySymbol
	return m.ReplyMentions(ctx, fmt.Sprintf("✅ Added %s to %s. New wallet: %s",
		common.FormatMoney(symbol, result.Amount),
		common.Mention(result.TargetID),
		common.FormatMoney(symbol, result.NewBalance),
	), []string{result.TargetID})
}

func (f *Feature) handleRemoveMoney(ctx context.Context, m *bot.MessageContext) error {
	target, amount, err := parseTargetAndAmount(m)
	if err != nil {
		return err
	}
	result, err := f.economy.AdminRemove(ctx, m.Sender, target, amount)
	if err != nil {
		return err
	}
	symbol := f.settings.Snapshot().CurrencySymbol
	return m.ReplyMentions(ctx, fmt.Sprintf("✅ Removed %s from %s. New wallet: %s",
		common.FormatMoney(symbol, result.Amount),
		common.Mention(result.TargetID),
		common.FormatMoney(symbol, result.NewBalance),
	), []string{result.TargetID})
}

func (f *Feature) handleSetBalance(ctx context.Context, m *bot.MessageContext) error {
	target, amount, err := parseTargetAndAmount(m)
	if err != nil {
		return err
	}
	result, err := f.economy.AdminSetBalance(ctx, m.Sender, target, amount)
	if err != nil {
		return err
	}
	symbol := f.settings.Snapshot().CurrencySymbol
	return m.ReplyMentions(ctx, fmt.Sprintf("✅ Set %s's wallet to %s",
		common.Mention(result.TargetID),
		common.FormatMoney(symbol, result.NewBalance),
	), []string{result.TargetID})
}

// handleReset is deliberately awkward to invoke: an explicit confirm
// argument, plus the owner password when one is configured.
func (f *Feature) handleReset(ctx context.Context, m *bot.MessageContext) error {
	if len(m.Args) == 0 || !strings.EqualFold(m.Args[0], "confirm") {
		return service.NewValidationError("this wipes every balance and the whole ledger. Run !ecoreset confirm to proceed")
	}

	if f.cfg.OwnerPasswordHash != "" {
		if len(m.Args) < 2 {
			return service.NewValidationError("owner password required: !ecoreset confirm <password>")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(f.cfg.OwnerPasswordHash), []byte(m.Args[1])); err != nil {
			return service.NewValidationError("wrong owner password")
		}
	}

	accounts, purged, err := f.economy.Reset(ctx, m.Sender)
	if err != nil {
		return err
	}
	return m.Reply(ctx, fmt.Sprintf("♻️ Economy reset: %d account(s) restored to the starting balance, %d ledger entries purged.", accounts, purged))
}

func parseTargetAndAmount(m *bot.MessageContext) (string, int64, error) {
	target, ok := m.TargetUser()
	if !ok {
		return "", 0, service.NewValidationError("mention the target user")
	}
	for _, arg := range m.Args {
		if strings.HasPrefix(arg, "@") || strings.HasPrefix(arg, "+") {
			continue
		}
		digits := strings.ReplaceAll(arg, ",", "")
		if len(digits) >= 10 {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		return target, n, nil
	}
	return "", 0, service.NewValidationError("give an amount, e.g. 500")
}
