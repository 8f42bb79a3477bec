// internal/state/accessor.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/core"
	"github.com/tradeforge/aatm/internal/metrics"
	"github.com/tradeforge/aatm/internal/store"
)

// Accessor is the CRUD surface over the persisted trading state. It consumes
// the client handle published by the connection lifecycle manager.
type Accessor interface {
	SaveStrategy(ctx context.Context, rec core.StrategyRecord) (string, error)
	GetStrategy(ctx context.Context, id string) (*core.StrategyRecord, error)
	ListStrategies(ctx context.Context, activeOnly bool) ([]core.StrategyRecord, error)
	DeactivateStrategy(ctx context.Context, id string) error

	RecordPerformance(ctx context.Context, rec core.PerformanceRecord) (string, error)
	ListPerformance(ctx context.Context, strategyID string) ([]core.PerformanceRecord, error)

	SaveMarketSnapshot(ctx context.Context, snap core.MarketSnapshot) error
	GetMarketSnapshot(ctx context.Context, symbol string) (*core.MarketSnapshot, error)

	LogTrade(ctx context.Context, entry core.TradeLogEntry) (string, error)
	ListTradeLogs(ctx context.Context, limit int) ([]core.TradeLogEntry, error)
}

// Store implements Accessor against a DocumentStore using the configured
// collection names.
type Store struct {
	client store.DocumentStore
	cfg    config.StoreConfig
	log    *zap.Logger
	reg    *metrics.Registry
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Store) { s.reg = reg }
}

// New creates an accessor bound to the given client handle.
func New(client store.DocumentStore, cfg config.StoreConfig, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{client: client, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SaveStrategy(ctx context.Context, rec core.StrategyRecord) (string, error) {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	fields, err := encodeFields(rec)
	if err != nil {
		return "", err
	}

	err = s.client.Set(ctx, s.cfg.CollectionStrategies, rec.ID, fields, false)
	s.record(s.cfg.CollectionStrategies, "set", err)
	if err != nil {
		return "", err
	}

	s.log.Debug("strategy saved",
		zap.String("id", rec.ID),
		zap.Int("generation", rec.Generation))
	return rec.ID, nil
}

func (s *Store) GetStrategy(ctx context.Context, id string) (*core.StrategyRecord, error) {
	fields, err := s.client.Get(ctx, s.cfg.CollectionStrategies, id)
	s.record(s.cfg.CollectionStrategies, "get", err)
	if err != nil {
		return nil, err
	}

	var rec core.StrategyRecord
	if err := decodeFields(fields, &rec); err != nil {
		return nil, err
	}
	rec.ID = id
	return &rec, nil
}

func (s *Store) ListStrategies(ctx context.Context, activeOnly bool) ([]core.StrategyRecord, error) {
	docs, err := s.client.Documents(ctx, s.cfg.CollectionStrategies, 0)
	s.record(s.cfg.CollectionStrategies, "list", err)
	if err != nil {
		return nil, err
	}

	var recs []core.StrategyRecord
	for _, doc := range docs {
		var rec core.StrategyRecord
		if err := decodeFields(doc.Fields, &rec); err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		if activeOnly && !rec.Active {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// DeactivateStrategy marks a strategy inactive without deleting its history.
func (s *Store) DeactivateStrategy(ctx context.Context, id string) error {
	fields := map[string]any{
		"active":     false,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	err := s.client.Set(ctx, s.cfg.CollectionStrategies, id, fields, true)
	s.record(s.cfg.CollectionStrategies, "set", err)
	return err
}

func (s *Store) RecordPerformance(ctx context.Context, rec core.PerformanceRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	fields, err := encodeFields(rec)
	if err != nil {
		return "", err
	}

	err = s.client.Set(ctx, s.cfg.CollectionPerformance, rec.ID, fields, false)
	s.record(s.cfg.CollectionPerformance, "set", err)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *Store) ListPerformance(ctx context.Context, strategyID string) ([]core.PerformanceRecord, error) {
	docs, err := s.client.Documents(ctx, s.cfg.CollectionPerformance, 0)
	s.record(s.cfg.CollectionPerformance, "list", err)
	if err != nil {
		return nil, err
	}

	var recs []core.PerformanceRecord
	for _, doc := range docs {
		var rec core.PerformanceRecord
		if err := decodeFields(doc.Fields, &rec); err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		if strategyID != "" && rec.StrategyID != strategyID {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// SaveMarketSnapshot upserts the latest market state for the snapshot's
// symbol; one document per symbol.
func (s *Store) SaveMarketSnapshot(ctx context.Context, snap core.MarketSnapshot) error {
	if snap.Symbol == "" {
		return fmt.Errorf("snapshot symbol is empty")
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}

	fields, err := encodeFields(snap)
	if err != nil {
		return err
	}

	err = s.client.Set(ctx, s.cfg.CollectionMarketState, snapshotDocID(snap.Symbol), fields, false)
	s.record(s.cfg.CollectionMarketState, "set", err)
	return err
}

func (s *Store) GetMarketSnapshot(ctx context.Context, symbol string) (*core.MarketSnapshot, error) {
	fields, err := s.client.Get(ctx, s.cfg.CollectionMarketState, snapshotDocID(symbol))
	s.record(s.cfg.CollectionMarketState, "get", err)
	if err != nil {
		return nil, err
	}

	var snap core.MarketSnapshot
	if err := decodeFields(fields, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) LogTrade(ctx context.Context, entry core.TradeLogEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now().UTC()
	}

	fields, err := encodeFields(entry)
	if err != nil {
		return "", err
	}

	err = s.client.Set(ctx, s.cfg.CollectionTradeLogs, entry.ID, fields, false)
	s.record(s.cfg.CollectionTradeLogs, "set", err)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (s *Store) ListTradeLogs(ctx context.Context, limit int) ([]core.TradeLogEntry, error) {
	docs, err := s.client.Documents(ctx, s.cfg.CollectionTradeLogs, limit)
	s.record(s.cfg.CollectionTradeLogs, "list", err)
	if err != nil {
		return nil, err
	}

	var entries []core.TradeLogEntry
	for _, doc := range docs {
		var entry core.TradeLogEntry
		if err := decodeFields(doc.Fields, &entry); err != nil {
			return nil, err
		}
		entry.ID = doc.ID
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) record(collection, op string, err error) {
	if s.reg == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.reg.RecordStoreOp(collection, op, status)
}

// snapshotDocID derives a document id from a trading symbol; path separators
// are not legal in document ids.
func snapshotDocID(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "_")
}

// encodeFields flattens a record into store fields via JSON, so timestamps
// travel as RFC 3339 strings across both Firestore and memory backends.
func encodeFields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeFields(fields map[string]any, out any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
