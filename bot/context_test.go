package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageContext_TargetUser(t *testing.T) {
	t.Run("mention wins", func(t *testing.T) {
		m := &MessageContext{
			Mentions:     []string{"111@s.whatsapp.net"},
			QuotedSender: "222@s.whatsapp.net",
			Args:         []string{"333"},
		}
		target, ok := m.TargetUser()
		assert.True(t, ok)
		assert.Equal(t, "111@s.whatsapp.net", target)
	})

	t.Run("quoted sender next", func(t *testing.T) {
		m := &MessageContext{QuotedSender: "222@s.whatsapp.net"}
		target, ok := m.TargetUser()
		assert.True(t, ok)
		assert.Equal(t, "222@s.whatsapp.net", target)
	})

	t.Run("phone number argument", func(t *testing.T) {
		m := &MessageContext{Args: []string{"give", "+491701234567", "500"}}
		target, ok := m.TargetUser()
		assert.True(t, ok)
		assert.Equal(t, "491701234567@s.whatsapp.net", target)
	})

	t.Run("no target", func(t *testing.T) {
		m := &MessageContext{Args: []string{"hello"}}
		_, ok := m.TargetUser()
		assert.False(t, ok)
	})
}
