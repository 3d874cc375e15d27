package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"whatsbot/models"
)

// settingsService implements the SettingsService interface.
// Writes go to the database first, then the cache; the cache is never the
// source of truth across restarts.
type settingsService struct {
	uowFactory UnitOfWorkFactory

	mu       sync.RWMutex
	raw      map[string]string
	snapshot models.EconomySettings
}

// NewSettingsService creates a new settings service
func NewSettingsService(uowFactory UnitOfWorkFactory) SettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		raw:        make(map[string]string),
		snapshot:   models.DefaultEconomySettings(),
	}
}

// Load seeds missing defaults and reads the economy namespace, atomically.
func (s *settingsService) Load(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	for key, value := range defaultSettingsMap() {
		if err := uow.SettingsRepository().SetIfAbsent(ctx, models.SettingsNamespaceEconomy, key, value); err != nil {
			return fmt.Errorf("failed to seed setting defaults: %w", err)
		}
	}

	values, err := uow.SettingsRepository().GetAll(ctx, models.SettingsNamespaceEconomy)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.raw = values
	s.snapshot = parseSettings(values)
	s.mu.Unlock()

	log.WithField("keys", len(values)).Info("Economy settings loaded")
	return nil
}

// Snapshot returns an immutable copy of the current settings
func (s *settingsService) Snapshot() models.EconomySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// All returns a copy of the raw key/value view
func (s *settingsService) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.raw))
	for k, v := range s.raw {
		out[k] = v
	}
	return out
}

// Set validates, persists, then refreshes the cache (write-through)
func (s *settingsService) Set(ctx context.Context, key, value string) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.SettingsRepository().Set(ctx, models.SettingsNamespaceEconomy, key, value); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.raw[key] = value
	s.snapshot = parseSettings(s.raw)
	s.mu.Unlock()

	log.WithFields(log.Fields{"key": key, "value": value}).Info("Economy setting updated")
	return nil
}

func defaultSettingsMap() map[string]string {
	d := models.DefaultEconomySettings()
	return map[string]string{
		models.SettingCurrencySymbol:      d.CurrencySymbol,
		models.SettingStartingBalance:     strconv.FormatInt(d.StartingBalance, 10),
		models.SettingDailyMin:            strconv.FormatInt(d.DailyMin, 10),
		models.SettingDailyMax:            strconv.FormatInt(d.DailyMax, 10),
		models.SettingWorkCooldownMinutes: strconv.FormatInt(d.WorkCooldownMinutes, 10),
		models.SettingRobCooldownMinutes:  strconv.FormatInt(d.RobCooldownMinutes, 10),
		models.SettingRobSuccessRate:      strconv.FormatFloat(d.RobSuccessRate, 'f', -1, 64),
		models.SettingRobMaxStealPercent:  strconv.FormatFloat(d.RobMaxStealPercent, 'f', -1, 64),
		models.SettingRobFailPenalty:      strconv.FormatInt(d.RobFailPenalty, 10),
		models.SettingRobMinRobberBalance: strconv.FormatInt(d.RobMinRobberBalance, 10),
		models.SettingRobMinTargetBalance: strconv.FormatInt(d.RobMinTargetBalance, 10),
		models.SettingGambleMinBet:        strconv.FormatInt(d.GambleMinBet, 10),
		models.SettingGambleMaxBet:        strconv.FormatInt(d.GambleMaxBet, 10),
		models.SettingGambleWinChance:     strconv.FormatFloat(d.GambleWinChance, 'f', -1, 64),
		models.SettingGambleMultiplier:    strconv.FormatFloat(d.GambleMultiplier, 'f', -1, 64),
		models.SettingLedgerRetentionDays: strconv.FormatInt(d.LedgerRetentionDays, 10),
	}
}

// parseSettings builds a snapshot from raw values, falling back to the
// default for any missing or unparseable key.
func parseSettings(raw map[string]string) models.EconomySettings {
	out := models.DefaultEconomySettings()

	if v, ok := raw[models.SettingCurrencySymbol]; ok && v != "" {
		out.CurrencySymbol = v
	}
	parseInt(raw, models.SettingStartingBalance, &out.StartingBalance)
	parseInt(raw, models.SettingDailyMin, &out.DailyMin)
	parseInt(raw, models.SettingDailyMax, &out.DailyMax)
	parseInt(raw, models.SettingWorkCooldownMinutes, &out.WorkCooldownMinutes)
	parseInt(raw, models.SettingRobCooldownMinutes, &out.RobCooldownMinutes)
	parseFloat(raw, models.SettingRobSuccessRate, &out.RobSuccessRate)
	parseFloat(raw, models.SettingRobMaxStealPercent, &out.RobMaxStealPercent)
	parseInt(raw, models.SettingRobFailPenalty, &out.RobFailPenalty)
	parseInt(raw, models.SettingRobMinRobberBalance, &out.RobMinRobberBalance)
	parseInt(raw, models.SettingRobMinTargetBalance, &out.RobMinTargetBalance)
	parseInt(raw, models.SettingGambleMinBet, &out.GambleMinBet)
	parseInt(raw, models.SettingGambleMaxBet, &out.GambleMaxBet)
	parseFloat(raw, models.SettingGambleWinChance, &out.GambleWinChance)
	parseFloat(raw, models.SettingGambleMultiplier, &out.GambleMultiplier)
	parseInt(raw, models.SettingLedgerRetentionDays, &out.LedgerRetentionDays)

	return out
}

func parseInt(raw map[string]string, key string, dst *int64) {
	if v, ok := raw[key]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		} else {
			log.WithFields(log.Fields{"key": key, "value": v}).Warn("Ignoring unparseable setting")
		}
	}
}

func parseFloat(raw map[string]string, key string, dst *float64) {
	if v, ok := raw[key]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		} else {
			log.WithFields(log.Fields{"key": key, "value": v}).Warn("Ignoring unparseable setting")
		}
	}
}

// validateSetting rejects unknown keys and values of the wrong shape
// before anything is persisted.
func validateSetting(key, value string) error {
	switch key {
	case models.SettingCurrencySymbol:
		if value == "" {
			return NewValidationError("%s must not be empty", key)
		}
		return nil
	case models.SettingStartingBalance, models.SettingDailyMin, models.SettingDailyMax,
		models.SettingWorkCooldownMinutes, models.SettingRobCooldownMinutes,
		models.SettingRobFailPenalty, models.SettingRobMinRobberBalance,
		models.SettingRobMinTargetBalance, models.SettingGambleMinBet,
		models.SettingGambleMaxBet, models.SettingLedgerRetentionDays:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return NewValidationError("%s must be a non-negative integer", key)
		}
		return nil
	case models.SettingRobSuccessRate, models.SettingRobMaxStealPercent, models.SettingGambleWinChance:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return NewValidationError("%s must be a number between 0 and 1", key)
		}
		return nil
	case models.SettingGambleMultiplier:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return NewValidationError("%s must be a positive number", key)
		}
		return nil
	default:
		return NewValidationError("unknown setting %q", key)
	}
}
