package server

import (
	"fmt"
	"strconv"
)

// Config holds configuration for the read-only history API.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// MaxPageSize caps the number of items returned by list endpoints.
	MaxPageSize int `mapstructure:"max_page_size" default:"100"`
}

// Validate checks that the server can start safely.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Port)
	}
	if c.ApiKey == "" {
		return fmt.Errorf("server api key is required")
	}
	return nil
}

// PageSize clamps a requested page size to [1, MaxPageSize].
func (c Config) PageSize(requested int) int {
	limit := c.MaxPageSize
	if limit <= 0 {
		limit = 100
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}
