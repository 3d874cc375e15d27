package economy

import (
	"whatsbot/bot"
	"whatsbot/service"
)

// Feature wires the economy commands to the engine.
type Feature struct {
	accounts service.AccountService
	economy  service.EconomyService
	settings service.SettingsService
}

func New(accounts service.AccountService, economy service.EconomyService, settings service.SettingsService) *Feature {
	return &Feature{
		accounts: accounts,
		economy:  economy,
		settings: settings,
	}
}

// Register adds all economy commands to the registry
func (f *Feature) Register(r *bot.Registry) {
	r.Register(&bot.Command{
		Name:        "balance",
		Aliases:     []string{"bal", "wallet"},
		Description: "Show your wallet and bank balance",
		Usage:       "!balance",
		Handler:     f.handleBalance,
	})
	r.Register(&bot.Command{
		Name:        "work",
		Description: "Work a shift for a random payout",
		Usage:       "!work",
		Handler:     f.handleWork,
	})
	r.Register(&bot.Command{
		Name:        "daily",
		Description: "Claim your daily reward and keep the streak alive",
		Usage:       "!daily",
		Handler:     f.handleDaily,
	})
	r.Register(&bot.Command{
		Name:        "send",
		Aliases:     []string{"transfer", "pay", "give"},
		Description: "Send money from your wallet to another user",
		Usage:       "!send @user <amount>",
		Handler:     f.handleSend,
	})
	r.Register(&bot.Command{
		Name:        "deposit",
		Aliases:     []string{"dep"},
		Description: "Move wallet money into your bank",
		Usage:       "!deposit <amount|all>",
		Handler:     f.handleDeposit,
	})
	r.Register(&bot.Command{
		Name:        "withdraw",
		Aliases:     []string{"wd"},
		Description: "Move bank money back into your wallet",
		Usage:       "!withdraw <amount|all>",
		Handler:     f.handleWithdraw,
	})
	r.Register(&bot.Command{
		Name:        "gamble",
		Aliases:     []string{"bet"},
		Description: "Bet wallet money against the house",
		Usage:       "!gamble <amount>",
		Handler:     f.handleGamble,
	})
	r.Register(&bot.Command{
		Name:        "rob",
		Description: "Attempt to rob another user's wallet",
		Usage:       "!rob @user",
		Handler:     f.handleRob,
	})
	r.Register(&bot.Command{
		Name:        "leaderboard",
		Aliases:     []string{"top", "lb"},
		Description: "Show the richest users",
		Usage:       "!leaderboard",
		Handler:     f.handleLeaderboard,
	})
	r.Register(&bot.Command{
		Name:        "profile",
		Aliases:     []string{"stats"},
		Description: "Show your economy profile",
		Usage:       "!profile",
		Handler:     f.handleProfile,
	})
	r.Register(&bot.Command{
		Name:        "history",
		Description: "Show your recent transactions",
		Usage:       "!history",
		Handler:     f.handleHistory,
	})
}
