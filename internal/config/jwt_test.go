package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     JWTConfig
		wantErr string
	}{
		{name: "valid", cfg: JWTConfig{Secret: "test-secret-key", ExpirationHours: 24}},
		{name: "minimum expiration", cfg: JWTConfig{Secret: "s", ExpirationHours: 1}},
		{name: "empty secret", cfg: JWTConfig{ExpirationHours: 24}, wantErr: "JWT_SECRET cannot be empty"},
		{name: "zero expiration", cfg: JWTConfig{Secret: "s"}, wantErr: "at least 1 hour"},
		{name: "negative expiration", cfg: JWTConfig{Secret: "s", ExpirationHours: -5}, wantErr: "got: -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestJWTConfig_Expiration(t *testing.T) {
	cfg := JWTConfig{Secret: "s", ExpirationHours: 48}
	assert.Equal(t, 48*time.Hour, cfg.Expiration())
}
