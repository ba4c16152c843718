package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "password auth",
			cfg:  Config{Host: "pve.example.com", User: "root@pam", Password: "secret"},
		},
		{
			name: "token auth",
			cfg:  Config{Host: "pve.example.com", User: "root@pam", TokenID: "ci", TokenSecret: "s3cr3t"},
		},
		{
			name:    "missing host",
			cfg:     Config{User: "root@pam", Password: "secret"},
			wantErr: "no cluster host",
		},
		{
			name:    "missing user",
			cfg:     Config{Host: "pve.example.com", Password: "secret"},
			wantErr: "no API user",
		},
		{
			name:    "no credentials",
			cfg:     Config{Host: "pve.example.com", User: "root@pam"},
			wantErr: "no credentials",
		},
		{
			name:    "token id without secret",
			cfg:     Config{Host: "pve.example.com", User: "root@pam", TokenID: "ci"},
			wantErr: "must be set together",
		},
		{
			name:    "token secret without id",
			cfg:     Config{Host: "pve.example.com", User: "root@pam", TokenSecret: "s3cr3t"},
			wantErr: "must be set together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHasCredentials(t *testing.T) {
	assert.True(t, (&Config{Password: "x"}).HasCredentials())
	assert.True(t, (&Config{TokenID: "a", TokenSecret: "b"}).HasCredentials())
	assert.False(t, (&Config{TokenID: "a"}).HasCredentials())
	assert.False(t, (&Config{}).HasCredentials())
}

func TestClientConfig(t *testing.T) {
	cfg := Config{
		Host:        "pve.example.com:8006",
		User:        "root@pam",
		TokenID:     "ci",
		TokenSecret: "s3cr3t",
		Insecure:    true,
		Timeout:     10,
	}

	cc := cfg.ClientConfig()
	assert.Equal(t, "pve.example.com:8006", cc.Host)
	assert.Equal(t, "root@pam", cc.User)
	assert.Equal(t, "ci", cc.TokenID)
	assert.Equal(t, "s3cr3t", cc.TokenSecret)
	assert.True(t, cc.InsecureSkipVerify)
	assert.Equal(t, 10*time.Second, cc.Timeout)
}
