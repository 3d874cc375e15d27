package common

import (
	"fmt"
	"strings"
	"time"

	"go.mau.fi/whatsmeow/types"
)

// FormatAmount formats an amount with thousand separators
func FormatAmount(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%d", amount)
	n := len(str)
	if n > 3 {
		var b strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				b.WriteRune(',')
			}
			b.WriteRune(digit)
		}
		str = b.String()
	}

	if negative {
		return "-" + str
	}
	return str
}

// FormatMoney formats an amount with the currency symbol in front
func FormatMoney(symbol string, amount int64) string {
	return symbol + FormatAmount(amount)
}

// FormatDuration renders a duration as "2h 5m" or "45s", for cooldown
// messages. Sub-minute remainders only show when nothing larger exists.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int64(d.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%ds", secs)
	}

	d = d.Round(time.Minute)
	hours := int64(d / time.Hour)
	mins := int64(d % time.Hour / time.Minute)
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Mention renders a WhatsApp mention token for a user JID string. The
// message carrying it must list the JID in its mentioned-JID context.
func Mention(userJID string) string {
	jid, err := types.ParseJID(userJID)
	if err != nil {
		return "@" + userJID
	}
	return "@" + jid.User
}
