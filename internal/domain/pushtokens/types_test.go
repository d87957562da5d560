package pushtokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidToken(t *testing.T) {
	cases := map[string]bool{
		"ExponentPushToken[abc123]": true,
		"ExpoPushToken[abc123]":     true,
		"ExponentPushToken[]":       false,
		"ExponentPushToken[abc":     false,
		"abc123":                    false,
		"":                          false,
	}
	for token, want := range cases {
		assert.Equal(t, want, ValidToken(token), token)
	}
}
