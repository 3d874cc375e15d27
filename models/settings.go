package models

// SettingsNamespaceEconomy scopes the economy tunables in the settings table.
const SettingsNamespaceEconomy = "economy"

// Economy settings keys as persisted in the settings table.
const (
	SettingCurrencySymbol      = "currency_symbol"
	SettingStartingBalance     = "starting_balance"
	SettingDailyMin            = "daily_min"
	SettingDailyMax            = "daily_max"
	SettingWorkCooldownMinutes = "work_cooldown_minutes"
	SettingRobCooldownMinutes  = "rob_cooldown_minutes"
	SettingRobSuccessRate      = "rob_success_rate"
	SettingRobMaxStealPercent  = "rob_max_steal_percent"
	SettingRobFailPenalty      = "rob_fail_penalty"
	SettingRobMinRobberBalance = "rob_min_robber_balance"
	SettingRobMinTargetBalance = "rob_min_target_balance"
	SettingGambleMinBet        = "gamble_min_bet"
	SettingGambleMaxBet        = "gamble_max_bet"
	SettingGambleWinChance     = "gamble_win_chance"
	SettingGambleMultiplier    = "gamble_multiplier"
	SettingLedgerRetentionDays = "ledger_retention_days"
)

// EconomySettings is an immutable snapshot of the economy tunables.
// Engine operations take one snapshot at the start so a concurrent
// admin change cannot produce inconsistent math mid-operation.
type EconomySettings struct {
	CurrencySymbol      string
	StartingBalance     int64
	DailyMin            int64
	DailyMax            int64
	WorkCooldownMinutes int64
	RobCooldownMinutes  int64
	RobSuccessRate      float64
	RobMaxStealPercent  float64
	RobFailPenalty      int64
	RobMinRobberBalance int64
	RobMinTargetBalance int64
	GambleMinBet        int64
	GambleMaxBet        int64
	GambleWinChance     float64
	GambleMultiplier    float64
	LedgerRetentionDays int64
}

// DefaultEconomySettings returns the values seeded into a fresh database.
func DefaultEconomySettings() EconomySettings {
	return EconomySettings{
		CurrencySymbol:      "$",
		StartingBalance:     1000,
		DailyMin:            100,
		DailyMax:            500,
		WorkCooldownMinutes: 60,
		RobCooldownMinutes:  120,
		RobSuccessRate:      0.35,
		RobMaxStealPercent:  0.30,
		RobFailPenalty:      250,
		RobMinRobberBalance: 100,
		RobMinTargetBalance: 200,
		GambleMinBet:        50,
		GambleMaxBet:        10000,
		GambleWinChance:     0.45,
		GambleMultiplier:    1.8,
		LedgerRetentionDays: 0,
	}
}
