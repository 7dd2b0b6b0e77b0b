// Package gormstore implements the store contracts on Gorm + SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"sarraf/internal/store"
	storemodel "sarraf/internal/store/model"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

var (
	_ store.SignalStore = (*GormStore)(nil)
	_ store.EventStore  = (*GormStore)(nil)
	_ store.UserStore   = (*GormStore)(nil)
)

// NewGormStore opens (or creates) the SQLite database at path and runs
// migrations. WAL keeps lock contention low between the three loops and
// the read-only HTTP server.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	return open(sqlite.Open(dsn))
}

// NewMemoryStore opens a fresh in-memory database, used by tests. Each
// call gets its own namespace so parallel tests cannot see each other's
// rows.
func NewMemoryStore() (*GormStore, error) {
	name := fmt.Sprintf("file:mem%d?mode=memory&cache=shared", memSeq.Add(1))
	return open(sqlite.Open(name))
}

var memSeq atomic.Int64

func open(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	models := []interface{}{
		&storemodel.TradeSignalModel{},
		&storemodel.SignalEventModel{},
		&storemodel.BotUserModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --------------------------- SignalStore ---------------------------

func (s *GormStore) InsertSignal(ctx context.Context, sig types.TradeSignal) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("gorm store not initialized")
	}
	now := time.Now()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = now
	}
	if sig.Status == "" {
		sig.Status = types.StatusNewSignal
	}
	m := newSignalModel(sig)
	m.UpdatedAtUnix = now.UnixMilli()
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (s *GormStore) SignalByID(ctx context.Context, id int64) (types.TradeSignal, bool, error) {
	if s == nil || s.db == nil {
		return types.TradeSignal{}, false, fmt.Errorf("gorm store not initialized")
	}
	var m storemodel.TradeSignalModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.TradeSignal{}, false, nil
		}
		return types.TradeSignal{}, false, err
	}
	return signalModelToDomain(m), true, nil
}

func (s *GormStore) SignalsByStatus(ctx context.Context, status types.Status) ([]types.TradeSignal, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialized")
	}
	var models []storemodel.TradeSignalModel
	if err := s.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.TradeSignal, 0, len(models))
	for _, m := range models {
		out = append(out, signalModelToDomain(m))
	}
	return out, nil
}

func (s *GormStore) RecentSignals(ctx context.Context, limit int) ([]types.TradeSignal, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []storemodel.TradeSignalModel
	if err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.TradeSignal, 0, len(models))
	for _, m := range models {
		out = append(out, signalModelToDomain(m))
	}
	return out, nil
}

func (s *GormStore) ActiveSignalExists(ctx context.Context, assetName string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("gorm store not initialized")
	}
	active := types.ActiveStatuses()
	statuses := make([]string, 0, len(active))
	for _, st := range active {
		statuses = append(statuses, string(st))
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&storemodel.TradeSignalModel{}).
		Where("asset_name = ? AND status IN ?", assetName, statuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// transition updates a row only when it still sits in the expected status.
// Zero rows affected means another phase (or a replay) got there first;
// that is not an error.
func (s *GormStore) transition(ctx context.Context, id int64, from, to types.Status, updates map[string]interface{}) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store not initialized")
	}
	if !types.CanTransition(from, to) {
		return fmt.Errorf("illegal transition %s -> %s", from, to)
	}
	updates["status"] = string(to)
	updates["updated_at"] = time.Now().UnixMilli()
	return s.db.WithContext(ctx).
		Model(&storemodel.TradeSignalModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates).Error
}

func (s *GormStore) MarkBuyPlaced(ctx context.Context, id int64, clientOrderID string, raw, formatted decimal.Decimal) error {
	return s.transition(ctx, id, types.StatusNewSignal, types.StatusBuyOrderPlaced, map[string]interface{}{
		"buy_client_order_id":    clientOrderID,
		"buy_quantity_raw":       raw.String(),
		"buy_quantity_formatted": formatted.String(),
	})
}

func (s *GormStore) MarkBuyFilled(ctx context.Context, id int64, netQuantity, fee decimal.Decimal) error {
	return s.transition(ctx, id, types.StatusBuyOrderPlaced, types.StatusBuyOrderFilled, map[string]interface{}{
		"buy_executed_quantity": netQuantity.String(),
		"buy_fee":               fee.String(),
	})
}

func (s *GormStore) MarkSellPlaced(ctx context.Context, id int64, clientOrderID string) error {
	return s.transition(ctx, id, types.StatusBuyOrderFilled, types.StatusSellOrderPlaced, map[string]interface{}{
		"sell_client_order_id": clientOrderID,
	})
}

func (s *GormStore) MarkSellFilled(ctx context.Context, id int64, executed, fee decimal.Decimal, note string) error {
	return s.transition(ctx, id, types.StatusSellOrderPlaced, types.StatusSellOrderFilled, map[string]interface{}{
		"sell_executed_quantity": executed.String(),
		"sell_fee":               fee.String(),
		"notes":                  note,
	})
}

func (s *GormStore) MarkCanceled(ctx context.Context, id int64, note string) error {
	return s.transition(ctx, id, types.StatusBuyOrderPlaced, types.StatusCanceledTimeout, map[string]interface{}{
		"notes": note,
	})
}

// MarkError is reachable from every non-terminal status, so it guards only
// against rows already terminal.
func (s *GormStore) MarkError(ctx context.Context, id int64, note string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store not initialized")
	}
	terminal := []string{
		string(types.StatusSellOrderFilled),
		string(types.StatusCanceledTimeout),
		string(types.StatusError),
	}
	return s.db.WithContext(ctx).
		Model(&storemodel.TradeSignalModel{}).
		Where("id = ? AND status NOT IN ?", id, terminal).
		Updates(map[string]interface{}{
			"status":     string(types.StatusError),
			"notes":      note,
			"updated_at": time.Now().UnixMilli(),
		}).Error
}

// --------------------------- Model helpers ---------------------------

func newSignalModel(sig types.TradeSignal) storemodel.TradeSignalModel {
	return storemodel.TradeSignalModel{
		ID:                   sig.ID,
		AssetName:            strings.ToUpper(strings.TrimSpace(sig.AssetName)),
		Pair:                 strings.TrimSpace(sig.Pair),
		StrategyName:         strings.TrimSpace(sig.StrategyName),
		EntryPrice:           sig.EntryPrice.String(),
		ExitPrice:            sig.ExitPrice.String(),
		Status:               string(sig.Status),
		BuyClientOrderID:     sig.BuyClientOrderID,
		SellClientOrderID:    sig.SellClientOrderID,
		BuyQuantityRaw:       sig.BuyQuantityRaw.String(),
		BuyQuantityFormatted: sig.BuyQuantityFormatted.String(),
		BuyExecutedQuantity:  sig.BuyExecutedQuantity.String(),
		BuyFee:               sig.BuyFee.String(),
		SellExecutedQuantity: sig.SellExecutedQuantity.String(),
		SellFee:              sig.SellFee.String(),
		Notes:                sig.Notes,
		CreatedAtUnix:        sig.CreatedAt.UnixMilli(),
	}
}

func signalModelToDomain(m storemodel.TradeSignalModel) types.TradeSignal {
	return types.TradeSignal{
		ID:                   m.ID,
		AssetName:            m.AssetName,
		Pair:                 m.Pair,
		StrategyName:         m.StrategyName,
		EntryPrice:           decOrZero(m.EntryPrice),
		ExitPrice:            decOrZero(m.ExitPrice),
		Status:               types.Status(m.Status),
		BuyClientOrderID:     m.BuyClientOrderID,
		SellClientOrderID:    m.SellClientOrderID,
		BuyQuantityRaw:       decOrZero(m.BuyQuantityRaw),
		BuyQuantityFormatted: decOrZero(m.BuyQuantityFormatted),
		BuyExecutedQuantity:  decOrZero(m.BuyExecutedQuantity),
		BuyFee:               decOrZero(m.BuyFee),
		SellExecutedQuantity: decOrZero(m.SellExecutedQuantity),
		SellFee:              decOrZero(m.SellFee),
		Notes:                m.Notes,
		CreatedAt:            millisToTime(m.CreatedAtUnix),
		UpdatedAt:            millisToTime(m.UpdatedAtUnix),
	}
}

func decOrZero(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func millisToTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}
