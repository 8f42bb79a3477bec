package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/core"
	"github.com/tradeforge/aatm/internal/store"
)

func testAccessor(t *testing.T) (*Store, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	cfg := config.Defaults().Store
	return New(mem, cfg, zap.NewNop()), mem
}

func TestStore_ImplementsAccessor(t *testing.T) {
	var _ Accessor = (*Store)(nil)
}

func TestStore_StrategyRoundTrip(t *testing.T) {
	acc, _ := testAccessor(t)
	ctx := context.Background()

	id, err := acc.SaveStrategy(ctx, core.StrategyRecord{
		Name:       "momentum_v3",
		Genome:     map[string]any{"lookback": 14.0, "threshold": 0.02},
		Generation: 7,
		Active:     true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id, "missing id gets generated")

	got, err := acc.GetStrategy(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "momentum_v3", got.Name)
	assert.Equal(t, 7, got.Generation)
	assert.True(t, got.Active)
	assert.Equal(t, 14.0, got.Genome["lookback"])
	assert.False(t, got.CreatedAt.IsZero(), "created timestamp stamped")
	assert.False(t, got.UpdatedAt.IsZero(), "updated timestamp stamped")
}

func TestStore_GetStrategy_Missing(t *testing.T) {
	acc, _ := testAccessor(t)

	_, err := acc.GetStrategy(context.Background(), "nope")
	require.ErrorIs(t, err, core.ErrDocumentNotFound)
}

func TestStore_ListStrategies_ActiveFilter(t *testing.T) {
	acc, _ := testAccessor(t)
	ctx := context.Background()

	_, err := acc.SaveStrategy(ctx, core.StrategyRecord{Name: "a", Active: true})
	require.NoError(t, err)
	idB, err := acc.SaveStrategy(ctx, core.StrategyRecord{Name: "b", Active: true})
	require.NoError(t, err)

	require.NoError(t, acc.DeactivateStrategy(ctx, idB))

	all, err := acc.ListStrategies(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := acc.ListStrategies(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].Name)
}

func TestStore_DeactivateStrategy_KeepsFields(t *testing.T) {
	acc, _ := testAccessor(t)
	ctx := context.Background()

	id, err := acc.SaveStrategy(ctx, core.StrategyRecord{
		Name:   "keeper",
		Genome: map[string]any{"x": 1.0},
		Active: true,
	})
	require.NoError(t, err)
	require.NoError(t, acc.DeactivateStrategy(ctx, id))

	got, err := acc.GetStrategy(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "keeper", got.Name, "deactivation merges, never replaces")
}

func TestStore_Performance(t *testing.T) {
	acc, _ := testAccessor(t)
	ctx := context.Background()

	_, err := acc.RecordPerformance(ctx, core.PerformanceRecord{
		StrategyID: "s1", Symbol: "BTC/USDT", TotalTrades: 12, WinRate: 0.58, PnLPct: 3.4,
	})
	require.NoError(t, err)
	_, err = acc.RecordPerformance(ctx, core.PerformanceRecord{
		StrategyID: "s2", Symbol: "BTC/USDT", TotalTrades: 4, WinRate: 0.25, PnLPct: -1.1,
	})
	require.NoError(t, err)

	forS1, err := acc.ListPerformance(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, forS1, 1)
	assert.Equal(t, 12, forS1[0].TotalTrades)

	all, err := acc.ListPerformance(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_MarketSnapshot_UpsertPerSymbol(t *testing.T) {
	acc, mem := testAccessor(t)
	ctx := context.Background()

	require.NoError(t, acc.SaveMarketSnapshot(ctx, core.MarketSnapshot{
		Symbol: "BTC/USDT", Exchange: "binance", LastPrice: 64000, Regime: "trending",
	}))
	require.NoError(t, acc.SaveMarketSnapshot(ctx, core.MarketSnapshot{
		Symbol: "BTC/USDT", Exchange: "binance", LastPrice: 65000, Regime: "trending",
	}))

	assert.Equal(t, 1, mem.Len("aatm_market_state"), "one document per symbol")

	got, err := acc.GetMarketSnapshot(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, got.LastPrice)
	assert.False(t, got.CapturedAt.IsZero())
}

func TestStore_MarketSnapshot_EmptySymbol(t *testing.T) {
	acc, _ := testAccessor(t)

	err := acc.SaveMarketSnapshot(context.Background(), core.MarketSnapshot{})
	require.Error(t, err)
}

func TestStore_TradeLogs(t *testing.T) {
	acc, _ := testAccessor(t)
	ctx := context.Background()

	executed := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	id, err := acc.LogTrade(ctx, core.TradeLogEntry{
		StrategyID: "s1",
		Symbol:     "BTC/USDT",
		Side:       "buy",
		Quantity:   0.05,
		Price:      64210.5,
		Mode:       core.ModePaper,
		ExecutedAt: executed,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := acc.ListTradeLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, core.ModePaper, entries[0].Mode)
	assert.Equal(t, 0.05, entries[0].Quantity)
	assert.True(t, entries[0].ExecutedAt.Equal(executed))
}
