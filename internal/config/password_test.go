package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{name: "defaults", wantCost: 12},
		{name: "custom cost", cost: "10", wantCost: 10},
		{name: "with pepper", cost: "11", pepper: "pepper", wantCost: 11},
		{name: "cost too high", cost: "15", wantErr: true},
		{name: "cost too low", cost: "3", wantErr: true},
		{name: "cost not a number", cost: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, allKeys...)
			if tt.cost != "" {
				t.Setenv("BCRYPT_COST", tt.cost)
			}
			if tt.pepper != "" {
				t.Setenv("PASSWORD_PEPPER", tt.pepper)
			}

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4}

	hash, err := cfg.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, cfg.VerifyPassword("Secret#123", hash))
	assert.False(t, cfg.VerifyPassword("secret#123", hash))
	assert.False(t, cfg.VerifyPassword("", hash))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 4, Pepper: "pepper-a"}
	hash, err := peppered.HashPassword("Secret#123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("Secret#123", hash))

	rotated := &PasswordConfig{BcryptCost: 4, Pepper: "pepper-b"}
	assert.False(t, rotated.VerifyPassword("Secret#123", hash), "a different pepper must not verify")

	plain := &PasswordConfig{BcryptCost: 4}
	assert.False(t, plain.VerifyPassword("Secret#123", hash))
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4}
	h1, err := cfg.HashPassword("same")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestPasswordConfig_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4}
	_, err := cfg.HashPassword(strings.Repeat("a", 80))
	assert.Error(t, err, "bcrypt rejects inputs over 72 bytes")
}

func TestPasswordConfig_ConcurrentAccess(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4}
	hash, err := cfg.HashPassword("Secret#123")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, cfg.VerifyPassword("Secret#123", hash))
		}()
	}
	wg.Wait()
}
