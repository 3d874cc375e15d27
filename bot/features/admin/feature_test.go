package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"whatsbot/bot"
	"whatsbot/config"
	"whatsbot/service"
)

func TestParseTargetAndAmount(t *testing.T) {
	tests := []struct {
		name       string
		msg        *bot.MessageContext
		wantTarget string
		wantAmount int64
		wantErr    string
	}{
		{
			name: "mention plus amount",
			msg: &bot.MessageContext{
				Args:     []string{"@user", "500"},
				Mentions: []string{"491701234567@s.whatsapp.net"},
			},
			wantTarget: "491701234567@s.whatsapp.net",
			wantAmount: 500,
		},
		{
			name: "bare phone number as target",
			msg: &bot.MessageContext{
				Args: []string{"491701234567", "2,500"},
			},
			wantTarget: "491701234567@s.whatsapp.net",
			wantAmount: 2500,
		},
		{
			name:    "no target",
			msg:     &bot.MessageContext{Args: []string{"500"}},
			wantErr: "mention the target user",
		},
		{
			name: "no amount",
			msg: &bot.MessageContext{
				Args:     []string{"@user"},
				Mentions: []string{"491701234567@s.whatsapp.net"},
			},
			wantErr: "give an amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, amount, err := parseTargetAndAmount(tt.msg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, target)
			assert.Equal(t, tt.wantAmount, amount)
		})
	}
}

// stubEconomy panics on anything but the methods a test overrides.
type stubEconomy struct {
	service.EconomyService
}

func TestHandleReset_RequiresConfirm(t *testing.T) {
	f := New(&config.Config{}, stubEconomy{}, nil)

	err := f.handleReset(context.Background(), &bot.MessageContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "!ecoreset confirm")
}

func TestHandleReset_PasswordGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	f := New(&config.Config{OwnerPasswordHash: string(hash)}, stubEconomy{}, nil)

	err = f.handleReset(context.Background(), &bot.MessageContext{Args: []string{"confirm"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password required")

	err = f.handleReset(context.Background(), &bot.MessageContext{Args: []string{"confirm", "wrong"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong owner password")
}
