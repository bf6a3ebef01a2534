package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})
	logger.Info().Str("table", "fees").Msg("append")
	logger.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), `"table":"fees"`)
	assert.Contains(t, buf.String(), `"message":"append"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Pretty: true, Output: &buf})
	logger.Debug().Msg("recorded")

	assert.Contains(t, buf.String(), "recorded")
	assert.NotContains(t, buf.String(), `"message"`)
}
