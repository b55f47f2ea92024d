// Package server holds the configuration of the read-only history API.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key every request must present
// and the page size cap for list endpoints. Validate is called by the serve command
// before the listener starts.
package server
