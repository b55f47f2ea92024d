package server_test

import (
	"testing"

	"flow-vault/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     server.Config
		wantErr bool
	}{
		{"Valid", server.Config{Port: "8080", ApiKey: "k"}, false},
		{"MissingKey", server.Config{Port: "8080"}, true},
		{"BadPort", server.Config{Port: "http", ApiKey: "k"}, true},
		{"PortOutOfRange", server.Config{Port: "70000", ApiKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_PageSize(t *testing.T) {
	c := server.Config{MaxPageSize: 50}
	assert.Equal(t, 50, c.PageSize(0))
	assert.Equal(t, 10, c.PageSize(10))
	assert.Equal(t, 50, c.PageSize(500))
	assert.Equal(t, 100, server.Config{}.PageSize(-1))
}
