package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	words, fields := ParseArgs([]string{"latitude=48.2", "now", "fix=true", "name=car", "=x"})
	assert.Equal(t, []string{"now", "=x"}, words)
	assert.Equal(t, map[string]interface{}{
		"latitude": 48.2,
		"fix":      true,
		"name":     "car",
	}, fields)
}

func TestParseArg(t *testing.T) {
	assert.Equal(t, -3.5, ParseArg("-3.5"))
	assert.Equal(t, 1.0, ParseArg("1"))
	assert.Equal(t, "T", ParseArg("T"))
}
