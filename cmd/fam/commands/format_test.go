package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWon(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0원"},
		{999, "999원"},
		{1000, "1,000원"},
		{1234567, "1,234,567원"},
		{-142857, "-142,857원"},
		{9899.6, "9,900원"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatWon(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.35%", FormatPercent(12.345678))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 6, displayWidth("005930"))
	assert.Equal(t, 8, displayWidth("삼성전자"))
	assert.Equal(t, 7, displayWidth("KB 증권"))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("0")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}
