package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/englishschool/internal/placement"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func envViper(t *testing.T, env map[string]string) *viper.Viper {
	t.Helper()
	t.Setenv("COOKIE_HASH_KEY", key(32))
	t.Setenv("COOKIE_BLOCK_KEY", key(32))
	for k, v := range env {
		t.Setenv(k, v)
	}
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envViper(t, nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.Production())
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, placement.NewTimeOfDay(9, 0), cfg.SlotStart)
	assert.Equal(t, placement.NewTimeOfDay(18, 0), cfg.SlotEnd)
	assert.Equal(t, 15*time.Minute, cfg.SlotStep)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, cfg.DisallowedWeekdays)
	assert.Zero(t, cfg.HandlerID)
	assert.False(t, cfg.TelegramEnabled())
	assert.Len(t, cfg.CookieHashKey, 32)

	opts := cfg.PlacementOptions()
	assert.Len(t, placement.Catalog(opts.SlotStart, opts.SlotEnd, opts.SlotStep), 37)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envViper(t, map[string]string{
		"ENV":                           "production",
		"BASE_URL":                      "https://school.example.com/",
		"SCHOOL_TIMEZONE":               "Asia/Tehran",
		"PLACEMENT_SLOT_START":          "10:00",
		"PLACEMENT_SLOT_END":            "12:00",
		"PLACEMENT_SLOT_STEP_MINUTES":   "30",
		"PLACEMENT_DISALLOWED_WEEKDAYS": "fri",
		"PLACEMENT_HANDLER_ID":          "3",
		"TELEGRAM_TOKEN":                "123:abc",
		"TELEGRAM_HANDLER_CHAT_ID":      "-100200",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, "https://school.example.com", cfg.BaseURL)
	assert.Equal(t, "Asia/Tehran", cfg.Location.String())
	assert.Equal(t, 30*time.Minute, cfg.SlotStep)
	assert.Equal(t, []time.Weekday{time.Friday}, cfg.DisallowedWeekdays)
	assert.Equal(t, int64(3), cfg.HandlerID)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-100200), cfg.TelegramHandlerChatID)
}

func TestLoadNoClosedDays(t *testing.T) {
	cfg, err := load(envViper(t, map[string]string{"PLACEMENT_DISALLOWED_WEEKDAYS": "none"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.DisallowedWeekdays)
	assert.Equal(t, "Booking on this day is not allowed.", cfg.PlacementOptions().Rules.WeekdayMessage())

	// An empty value is indistinguishable from unset and keeps the default.
	cfg, err = load(envViper(t, map[string]string{"PLACEMENT_DISALLOWED_WEEKDAYS": ""}))
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, cfg.DisallowedWeekdays)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"PLACEMENT_SLOT_START":          {"PLACEMENT_SLOT_START": "9am"},
		"PLACEMENT_SLOT_END":            {"PLACEMENT_SLOT_START": "18:00", "PLACEMENT_SLOT_END": "09:00"},
		"PLACEMENT_SLOT_STEP_MINUTES":   {"PLACEMENT_SLOT_STEP_MINUTES": "0"},
		"PLACEMENT_DISALLOWED_WEEKDAYS": {"PLACEMENT_DISALLOWED_WEEKDAYS": "someday"},
		"SCHOOL_TIMEZONE":               {"SCHOOL_TIMEZONE": "Mars/Olympus"},
		"COOKIE_BLOCK_KEY":              {"COOKIE_BLOCK_KEY": key(20)},
		"COOKIE_HASH_KEY":               {"COOKIE_HASH_KEY": "not base64!"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(envViper(t, env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadRequiresCookieKeys(t *testing.T) {
	v := envViper(t, nil)
	t.Setenv("COOKIE_HASH_KEY", "")
	_, err := load(v)
	assert.ErrorContains(t, err, "COOKIE_HASH_KEY")
}

func TestDecodeB64FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hash.key")
	require.NoError(t, os.WriteFile(path, []byte(key(32)+"\n"), 0o600))
	b, err := decodeB64(path)
	require.NoError(t, err)
	assert.Len(t, b, 32)
}
