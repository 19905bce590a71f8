package di

import (
	"testing"

	"github.com/ssargent/raffle/pkg/api"
	"github.com/ssargent/raffle/pkg/config"
	"github.com/ssargent/raffle/pkg/storage"
	"github.com/ssargent/raffle/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()

	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	engine, err := c.GetEngineFactory()(cfg, zap.NewNop())
	require.NoError(t, err)
	defer engine.Close()
	assert.IsType(t, &store.KVStore{}, engine)
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()

	memory := storage.NewMemoryEngine()
	c.SetEngineFactory(func(*config.Config, *zap.Logger) (store.Engine, error) {
		return memory, nil
	})

	engine, err := c.GetEngineFactory()(config.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Same(t, memory, engine)

	factory := api.NewServerFactory()
	c.SetServerFactory(factory)
	assert.Same(t, factory, c.GetServerFactory())
}
