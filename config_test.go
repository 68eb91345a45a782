package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{port: 8080, validator: "heuristic"}, false},
		{"lexicon validator", Config{port: 8080, validator: "lexicon"}, false},
		{"unknown validator", Config{port: 8080, validator: "psychic"}, true},
		{"port too low", Config{port: 0, validator: "heuristic"}, true},
		{"port too high", Config{port: 70000, validator: "heuristic"}, true},
		{"cert without key", Config{port: 8080, validator: "heuristic", tlsCert: "cert.pem"}, true},
		{"key without cert", Config{port: 8080, validator: "heuristic", tlsKey: "key.pem"}, true},
		{"cert and key", Config{port: 8080, validator: "heuristic", tlsCert: "cert.pem", tlsKey: "key.pem"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AB2CD", normalizeCode(" ab2cd "))
	assert.Equal(t, "", normalizeCode(""))
}

func TestPlayerName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Asha", playerName("  Asha "))
	assert.Equal(t, "", playerName("   "))

	long := playerName("abcdefghijklmnopqrstuvwxyzabcdefghijklmnop")
	assert.Len(t, long, 32)
}
