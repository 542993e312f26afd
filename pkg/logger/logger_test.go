package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONWithService(t *testing.T) {
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf, Service: "payments-portal"})
	log.Debug().Str("user_id", "u-1").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "payments-portal", entry["service"])
	require.Equal(t, "debug", entry["level"])
	require.Equal(t, "u-1", entry["user_id"])
	require.Contains(t, entry, "time")
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	var first, second bytes.Buffer
	Init(Options{Level: "warn", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Msg("filtered")
	log.Warn().Msg("kept")

	require.Empty(t, second.String())
	require.NotContains(t, first.String(), "filtered")
	require.Contains(t, first.String(), "kept")
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.Panics(t, func() { Get() })
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
