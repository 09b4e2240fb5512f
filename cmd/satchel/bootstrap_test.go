package main

import (
	"testing"

	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/logging"
	"github.com/stretchr/testify/assert"
)

func TestParseRotationConfig(t *testing.T) {
	def := logging.DefaultRotationConfig().MaxSize

	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name:     "bare unit is binary",
			input:    config.RotationConfig{MaxSize: "10M", MaxAge: 30, MaxBackups: 5, Daily: true},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 30, MaxBackups: 5, Daily: true},
		},
		{
			name:     "gigabytes",
			input:    config.RotationConfig{MaxSize: "1G", MaxAge: 7, MaxBackups: 3},
			expected: logging.RotationConfig{MaxSize: 1024 * 1024 * 1024, MaxAge: 7, MaxBackups: 3},
		},
		{
			name:     "SI suffix",
			input:    config.RotationConfig{MaxSize: "10MB"},
			expected: logging.RotationConfig{MaxSize: 10 * 1000 * 1000},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxAge: 14, MaxBackups: 2, Daily: true},
			expected: logging.RotationConfig{MaxSize: def, MaxAge: 14, MaxBackups: 2, Daily: true},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "huge", MaxBackups: 1},
			expected: logging.RotationConfig{MaxSize: def, MaxBackups: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRotationConfig(tt.input))
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{
		Level:      "warn",
		Path:       "/tmp/satchel.log",
		Components: map[string]string{"pipeline": "debug"},
	}

	quiet := loggingConfig(lc, false)
	assert.Equal(t, "warn", quiet.Level)
	assert.Equal(t, "/tmp/satchel.log", quiet.Path)
	assert.Equal(t, "debug", quiet.Components["pipeline"])
	assert.Empty(t, quiet.ConsoleLevel)

	verbose := loggingConfig(lc, true)
	assert.Equal(t, "debug", verbose.ConsoleLevel)
}
