package state

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/archive"
	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/core"
	"github.com/tradeforge/aatm/internal/store"
)

func TestExporter_ExportCollection(t *testing.T) {
	mem := store.NewMemory()
	cfg := config.Defaults().Store
	acc := New(mem, cfg, zap.NewNop())
	ctx := context.Background()

	backend, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	id1, err := acc.LogTrade(ctx, core.TradeLogEntry{Symbol: "BTC/USDT", Side: "buy", Quantity: 0.1, Price: 64000, Mode: core.ModePaper})
	require.NoError(t, err)
	_, err = acc.LogTrade(ctx, core.TradeLogEntry{Symbol: "BTC/USDT", Side: "sell", Quantity: 0.1, Price: 64900, Mode: core.ModePaper})
	require.NoError(t, err)

	exp := NewExporter(mem, backend, cfg, zap.NewNop(), nil)
	asOf := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	n, err := exp.ExportCollection(ctx, cfg.CollectionTradeLogs, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := backend.List(ctx, cfg.CollectionTradeLogs)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Contains(t, keys, cfg.CollectionTradeLogs+"/2026/08/24/"+id1+".json")

	data, err := backend.Read(ctx, cfg.CollectionTradeLogs+"/2026/08/24/"+id1+".json")
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "buy", fields["side"])
}

func TestExporter_ExportState(t *testing.T) {
	mem := store.NewMemory()
	cfg := config.Defaults().Store
	acc := New(mem, cfg, zap.NewNop())
	ctx := context.Background()

	_, err := acc.LogTrade(ctx, core.TradeLogEntry{Symbol: "ETH/USDT", Side: "buy", Quantity: 1, Price: 3000, Mode: core.ModeBacktest})
	require.NoError(t, err)
	require.NoError(t, acc.SaveMarketSnapshot(ctx, core.MarketSnapshot{Symbol: "ETH/USDT", LastPrice: 3000}))

	backend, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	exp := NewExporter(mem, backend, cfg, zap.NewNop(), nil)
	n, err := exp.ExportState(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one trade log plus one snapshot")
}

func TestExporter_EmptyCollection(t *testing.T) {
	mem := store.NewMemory()
	cfg := config.Defaults().Store

	backend, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	exp := NewExporter(mem, backend, cfg, zap.NewNop(), nil)
	n, err := exp.ExportCollection(context.Background(), cfg.CollectionTradeLogs, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
