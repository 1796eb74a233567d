package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelMethods(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	cases := []struct {
		level string
		fn    func()
		msg   string
	}{
		{"debug", func() { l.Debug("잔고 조회") }, "잔고 조회"},
		{"info", func() { l.Infof("accounts=%d", 3) }, "accounts=3"},
		{"warn", func() { l.Warn("partial balance") }, "partial balance"},
		{"error", func() { l.Errorf("order %s failed", "0000123") }, "order 0000123 failed"},
	}

	for _, c := range cases {
		t.Run(c.level, func(t *testing.T) {
			buf.Reset()
			c.fn()
			entry := decodeLine(t, &buf)
			assert.Equal(t, c.level, entry["level"])
			assert.Equal(t, c.msg, entry["message"])
		})
	}
}

func TestWithFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.WithFields(map[string]interface{}{
		"account_id": 7,
		"ticker":     "005930",
	}).WithField("step", 2).Info("grid step submitted")

	entry := decodeLine(t, &buf)
	assert.Equal(t, float64(7), entry["account_id"])
	assert.Equal(t, "005930", entry["ticker"])
	assert.Equal(t, float64(2), entry["step"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.WithError(errors.New("backend unreachable")).Error("refresh failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "backend unreachable", entry["error"])
	assert.Equal(t, "refresh failed", entry["message"])
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	// must not panic
	l.WithField("k", "v").Info("dropped")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fam.log")
	l := New(&config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "json",
		LogFile:   config.LogFileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	})

	l.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "written to file"))
	assert.True(t, strings.Contains(string(data), `"service":"fam-dashboard"`))
}

func TestWithAccountAndRequestID(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.WithAccount(3).WithRequestID("req-1").Info("balance loaded")

	entry := decodeLine(t, &buf)
	assert.Equal(t, float64(3), entry["account_id"])
	assert.Equal(t, "req-1", entry["request_id"])

	buf.Reset()
	l.WithRequestID("").Info("no id")
	entry = decodeLine(t, &buf)
	_, ok := entry["request_id"]
	assert.False(t, ok)
}
