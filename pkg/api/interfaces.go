// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"io"

	"github.com/ssargent/raffle/pkg/codec"
	"github.com/ssargent/raffle/pkg/records"
	"go.uber.org/zap"
)

// RecordService is the set of record operations the HTTP layer serves
type RecordService interface {
	Create(record codec.Record) (string, error)
	Get(id string) (codec.Record, error)
	Update(id string, record codec.Record) error
	Delete(id string) error
	List() ([]records.Entry, error)
	Count() (int, error)
	PickRandom() (records.Entry, error)
	WriteCSV(w io.Writer) error
	WriteXLSX(w io.Writer) error
}

var _ RecordService = (*records.Store)(nil)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled, then shuts down gracefully
	StartServer(ctx context.Context, svc RecordService, config ServerConfig, logger *zap.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
