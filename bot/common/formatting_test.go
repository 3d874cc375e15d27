package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-5000, "-5,000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.in))
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{500 * time.Millisecond, "1s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h"},
		{119*time.Minute + 40*time.Second, "2h"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in))
	}
}

func TestMention(t *testing.T) {
	assert.Equal(t, "@491701234567", Mention("491701234567@s.whatsapp.net"))
}
