package economy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"whatsbot/bot"
	"whatsbot/bot/common"
	"whatsbot/models"
	"whatsbot/service"
)

func (f *Feature) handleBalance(ctx context.Context, m *bot.MessageContext) error {
	account, err := f.accounts.GetAccount(ctx, m.Sender)
	if err != nil {
		return err
	}
	if account == nil {
		// The dispatcher ensures the account before handlers run, so
		// this only happens in a reset race.
		return service.ErrTargetNotFound
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	return m.Reply(ctx, fmt.Sprintf(
		"💰 *Wallet:* %s\n🏦 *Bank:* %s\n📊 *Net worth:* %s",
		common.FormatMoney(symbol, account.Balance),
		common.FormatMoney(symbol, account.Bank),
		common.FormatMoney(symbol, account.NetWorth()),
	))
}

func (f *Feature) handleWork(ctx context.Context, m *bot.MessageContext) error {
	result, err := f.economy.Work(ctx, m.Sender)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	return m.Reply(ctx, fmt.Sprintf(
		"💼 You worked as a *%s* and earned %s!\nWallet: %s (shift #%d)",
		result.JobName,
		common.FormatMoney(symbol, result.Earnings),
		common.FormatMoney(symbol, result.NewBalance),
		result.WorkCount,
	))
}

func (f *Feature) handleDaily(ctx context.Context, m *bot.MessageContext) error {
	result, err := f.economy.Daily(ctx, m.Sender)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	text := fmt.Sprintf("🎁 Daily reward: %s!\n🔥 Streak: %d day(s)",
		common.FormatMoney(symbol, result.Amount), result.Streak)
	if result.Streak == result.LongestStreak && result.Streak > 1 {
		text += " — personal best!"
	}
	text += fmt.Sprintf("\nWallet: %s", common.FormatMoney(symbol, result.NewBalance))
	return m.Reply(ctx, text)
}

func (f *Feature) handleSend(ctx context.Context, m *bot.MessageContext) error {
	target, ok := m.TargetUser()
	if !ok {
		return service.NewValidationError("mention the user you want to pay: !send @user <amount>")
	}
	amount, _, err := parseAmount(m.Args, false)
	if err != nil {
		return err
	}

	result, err := f.economy.Transfer(ctx, m.Sender, target, amount)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	return m.ReplyMentions(ctx, fmt.Sprintf(
		"💸 Sent %s to %s.\nYour wallet: %s",
		common.FormatMoney(symbol, result.Amount),
		common.Mention(result.RecipientID),
		common.FormatMoney(symbol, result.NewBalance),
	), []string{result.RecipientID})
}

func (f *Feature) handleDeposit(ctx context.Context, m *bot.MessageContext) error {
	amount, all, err := parseAmount(m.Args, true)
	if err != nil {
		return err
	}

	result, err := f.economy.Deposit(ctx, m.Sender, amount, all)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	return m.Reply(ctx, fmt.Sprintf(
		"🏦 Deposited %s.\nWallet: %s | Bank: %s",
		common.FormatMoney(symbol, result.Amount),
		common.FormatMoney(symbol, result.NewBalance),
		common.FormatMoney(symbol, result.NewBank),
	))
}

func (f *Feature) handleWithdraw(ctx context.Context, m *bot.MessageContext) error {
	amount, all, err := parseAmount(m.Args, true)
	if err != nil {
		return err
	}

	result, err := f.economy.Withdraw(ctx, m.Sender, amount, all)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	return m.Reply(ctx, fmt.Sprintf(
		"💵 Withdrew %s.\nWallet: %s | Bank: %s",
		common.FormatMoney(symbol, result.Amount),
		common.FormatMoney(symbol, result.NewBalance),
		common.FormatMoney(symbol, result.NewBank),
	))
}

func (f *Feature) handleGamble(ctx context.Context, m *bot.MessageContext) error {
	amount, _, err := parseAmount(m.Args, false)
	if err != nil {
		return err
	}

	result, err := f.economy.Gamble(ctx, m.Sender, amount)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	if result.Won {
		return m.Reply(ctx, fmt.Sprintf(
			"🎉 *You won!* Profit: %s\nWallet: %s",
			common.FormatMoney(symbol, result.Profit),
			common.FormatMoney(symbol, result.NewBalance),
		))
	}
	return m.Reply(ctx, fmt.Sprintf(
		"💀 *You lost* %s.\nWallet: %s",
		common.FormatMoney(symbol, result.BetAmount),
		common.FormatMoney(symbol, result.NewBalance),
	))
}

func (f *Feature) handleRob(ctx context.Context, m *bot.MessageContext) error {
	target, ok := m.TargetUser()
	if !ok {
		return service.NewValidationError("mention the user you want to rob: !rob @user")
	}

	result, err := f.economy.Rob(ctx, m.Sender, target)
	if err != nil {
		return err
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	if result.Success {
		return m.ReplyMentions(ctx, fmt.Sprintf(
			"🔫 You robbed %s and got away with %s!\nWallet: %s",
			common.Mention(result.TargetID),
			common.FormatMoney(symbol, result.Amount),
			common.FormatMoney(symbol, result.NewBalance),
		), []string{result.TargetID})
	}
	return m.ReplyMentions(ctx, fmt.Sprintf(
		"🚔 You got caught robbing %s and paid a %s fine.\nWallet: %s",
		common.Mention(result.TargetID),
		common.FormatMoney(symbol, result.Penalty),
		common.FormatMoney(symbol, result.NewBalance),
	), []string{result.TargetID})
}

func (f *Feature) handleLeaderboard(ctx context.Context, m *bot.MessageContext) error {
	entries, err := f.accounts.Leaderboard(ctx, 10)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return m.Reply(ctx, "Nobody has any money yet. Be the first: !work")
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	medals := []string{"🥇", "🥈", "🥉"}

	var b strings.Builder
	b.WriteString("🏆 *Leaderboard*\n")
	mentions := make([]string, 0, len(entries))
	for _, entry := range entries {
		rank := fmt.Sprintf("%d.", entry.Rank)
		if entry.Rank <= len(medals) {
			rank = medals[entry.Rank-1]
		}
		fmt.Fprintf(&b, "%s %s — %s\n", rank, common.Mention(entry.UserID), common.FormatMoney(symbol, entry.NetWorth))
		mentions = append(mentions, entry.UserID)
	}
	return m.ReplyMentions(ctx, strings.TrimRight(b.String(), "\n"), mentions)
}

func (f *Feature) handleProfile(ctx context.Context, m *bot.MessageContext) error {
	subject := m.Sender
	if target, ok := m.TargetUser(); ok {
		subject = target
	}

	account, err := f.accounts.GetAccount(ctx, subject)
	if err != nil {
		return err
	}
	if account == nil {
		return service.ErrTargetNotFound
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	name := common.Mention(account.UserID)
	if subject == m.Sender && m.PushName != "" {
		name = m.PushName
	}

	var mentions []string
	if subject != m.Sender {
		mentions = append(mentions, account.UserID)
	}
	return m.ReplyMentions(ctx, fmt.Sprintf(
		"👤 *%s*\n"+
			"💰 Net worth: %s\n"+
			"💼 Shifts worked: %d\n"+
			"🔫 Robberies attempted: %d\n"+
			"🔥 Streak: %d (best %d)\n"+
			"🎁 Dailies claimed: %d\n"+
			"💬 Commands used: %d\n"+
			"📅 First seen: %s",
		name,
		common.FormatMoney(symbol, account.NetWorth()),
		account.WorkCount,
		account.RobCount,
		account.Streak, account.LongestStreak,
		account.TotalAttendances,
		account.CommandsUsed,
		account.FirstSeen.UTC().Format("2 Jan 2006"),
	), mentions)
}

func (f *Feature) handleHistory(ctx context.Context, m *bot.MessageContext) error {
	entries, err := f.accounts.History(ctx, m.Sender, 10)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return m.Reply(ctx, "No transactions yet.")
	}

	symbol := f.settings.Snapshot().CurrencySymbol
	var b strings.Builder
	b.WriteString("📜 *Recent transactions*\n")
	for _, entry := range entries {
		sign := "+"
		if entry.Amount < 0 {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s %s%s — %s\n",
			entry.CreatedAt.UTC().Format("02.01 15:04"),
			sign,
			common.FormatMoney(symbol, abs(entry.Amount)),
			describeTransaction(entry),
		)
	}
	return m.Reply(ctx, strings.TrimRight(b.String(), "\n"))
}

func describeTransaction(txn *models.Transaction) string {
	switch txn.Type {
	case models.TransactionTypeWork:
		if job, ok := txn.Details["job"].(string); ok {
			return "worked as " + job
		}
		return "work"
	case models.TransactionTypeDaily:
		return "daily reward"
	case models.TransactionTypeTransferOut:
		return "sent to " + detailUser(txn, "to")
	case models.TransactionTypeTransferIn:
		return "received from " + detailUser(txn, "from")
	case models.TransactionTypeDeposit:
		return "bank deposit"
	case models.TransactionTypeWithdrawal:
		return "bank withdrawal"
	case models.TransactionTypeGambleWin:
		return "gamble won"
	case models.TransactionTypeGambleLoss:
		return "gamble lost"
	case models.TransactionTypeRobSuccess:
		return "robbed " + detailUser(txn, "target")
	case models.TransactionTypeRobFail:
		return "failed robbery fine"
	case models.TransactionTypeRobbed:
		return "robbed by " + detailUser(txn, "by")
	case models.TransactionTypeAdminAdd, models.TransactionTypeAdminRemove, models.TransactionTypeAdminSetBalance:
		return "admin adjustment"
	default:
		return string(txn.Type)
	}
}

func detailUser(txn *models.Transaction, key string) string {
	if jid, ok := txn.Details[key].(string); ok {
		return common.Mention(jid)
	}
	return "someone"
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// parseAmount extracts the first numeric argument. With allowAll, the
// literal "all" is accepted and reported through the flag.
func parseAmount(args []string, allowAll bool) (int64, bool, error) {
	for _, arg := range args {
		if allowAll && strings.EqualFold(arg, "all") {
			return 0, true, nil
		}
		if strings.HasPrefix(arg, "@") || strings.HasPrefix(arg, "+") {
			continue
		}
		digits := strings.ReplaceAll(arg, ",", "")
		// Digit runs of phone-number length are targets, not amounts.
		if len(digits) >= 10 {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if n <= 0 {
			return 0, false, service.NewValidationError("amount must be positive")
		}
		return n, false, nil
	}
	if allowAll {
		return 0, false, service.NewValidationError("give an amount or \"all\"")
	}
	return 0, false, service.NewValidationError("give an amount, e.g. 100")
}
