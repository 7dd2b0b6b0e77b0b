package gormstore

import (
	"context"
	"fmt"
	"time"

	"sarraf/internal/store"
	storemodel "sarraf/internal/store/model"
	"sarraf/internal/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func (s *GormStore) AppendSignalEvent(ctx context.Context, evt store.SignalEvent) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store not initialized")
	}
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now()
	}
	m := storemodel.SignalEventModel{
		EventID:       evt.EventID,
		SignalID:      evt.SignalID,
		FromStatus:    string(evt.FromStatus),
		ToStatus:      string(evt.ToStatus),
		Note:          evt.Note,
		Payload:       datatypes.JSON(evt.Payload),
		CreatedAtUnix: evt.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *GormStore) ListSignalEvents(ctx context.Context, signalID int64, limit int) ([]store.SignalEvent, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []storemodel.SignalEventModel
	if err := s.db.WithContext(ctx).
		Where("signal_id = ?", signalID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.SignalEvent, 0, len(models))
	for _, m := range models {
		out = append(out, store.SignalEvent{
			EventID:    m.EventID,
			SignalID:   m.SignalID,
			FromStatus: types.Status(m.FromStatus),
			ToStatus:   types.Status(m.ToStatus),
			Note:       m.Note,
			Payload:    []byte(m.Payload),
			CreatedAt:  millisToTime(m.CreatedAtUnix),
		})
	}
	return out, nil
}
