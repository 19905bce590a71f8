package api

import (
	"time"

	"github.com/ssargent/raffle/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Bind            string
	Port            int
	ShutdownTimeout time.Duration
	// MetricsInterval is how often the record count gauge is refreshed
	MetricsInterval time.Duration
}

// withDefaults fills unset durations
func (c ServerConfig) withDefaults() ServerConfig {
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = 30 * time.Second
	}
	return c
}

// recordForm is the data behind the record edit page
type recordForm struct {
	ID string
	codec.Record
}

// listRow is one line of the selection page
type listRow struct {
	ID        string
	FirstName string
	LastName  string
	Company   string
}

// listPage is the data behind the selection page
type listPage struct {
	Count   int
	Records []listRow
}

// rafflePage is the data behind the winner page
type rafflePage struct {
	ID    string
	Name  string
	Email string
}

// errorPage is the data behind the error page
type errorPage struct {
	Status  int
	Message string
}
