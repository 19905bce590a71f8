// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/raffle/pkg/api" //nolint:depguard
	"github.com/ssargent/raffle/pkg/config"
	"github.com/ssargent/raffle/pkg/storage"
	"github.com/ssargent/raffle/pkg/store"
	"go.uber.org/zap"
)

// EngineFactory opens the key-value engine described by a configuration
type EngineFactory func(cfg *config.Config, logger *zap.Logger) (store.Engine, error)

// Container holds all the dependencies for the application
type Container struct {
	engineFactory EngineFactory
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		engineFactory: storage.Open,
		serverFactory: api.NewServerFactory(),
	}
}

// GetEngineFactory returns the engine factory
func (c *Container) GetEngineFactory() EngineFactory {
	return c.engineFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetEngineFactory allows overriding the engine factory (for testing)
func (c *Container) SetEngineFactory(factory EngineFactory) {
	c.engineFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
