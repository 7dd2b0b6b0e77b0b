package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sarraf/internal/store"
	storemodel "sarraf/internal/store/model"

	"gorm.io/gorm"
)

func (s *GormStore) CreateUser(ctx context.Context, user store.BotUser) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("gorm store not initialized")
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return 0, fmt.Errorf("username is required")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m := storemodel.BotUserModel{
		TelegramUserID: user.TelegramUserID,
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
		IsAdmin:        user.IsAdmin,
		CreatedAtUnix:  user.CreatedAt.UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (store.BotUser, bool, error) {
	return s.findUser(ctx, "username = ?", strings.TrimSpace(username))
}

func (s *GormStore) UserByTelegramID(ctx context.Context, telegramID int64) (store.BotUser, bool, error) {
	return s.findUser(ctx, "telegram_user_id = ?", telegramID)
}

func (s *GormStore) findUser(ctx context.Context, query string, arg interface{}) (store.BotUser, bool, error) {
	if s == nil || s.db == nil {
		return store.BotUser{}, false, fmt.Errorf("gorm store not initialized")
	}
	var m storemodel.BotUserModel
	if err := s.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.BotUser{}, false, nil
		}
		return store.BotUser{}, false, err
	}
	return store.BotUser{
		ID:             m.ID,
		TelegramUserID: m.TelegramUserID,
		Username:       m.Username,
		HashedPassword: m.HashedPassword,
		IsAdmin:        m.IsAdmin,
		CreatedAt:      millisToTime(m.CreatedAtUnix),
	}, true, nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("gorm store not initialized")
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&storemodel.BotUserModel{}).Count(&count).Error
	return count, err
}
