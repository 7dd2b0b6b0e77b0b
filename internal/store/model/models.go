package model

import "gorm.io/datatypes"

// TradeSignalModel is the persisted form of a trade signal. Decimals are
// stored as strings to keep exact values across the database round-trip;
// timestamps are epoch milliseconds (always UTC by construction).
type TradeSignalModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	AssetName    string `gorm:"column:asset_name;index"`
	Pair         string `gorm:"column:pair"`
	StrategyName string `gorm:"column:strategy_name"`

	EntryPrice string `gorm:"column:entry_price"`
	ExitPrice  string `gorm:"column:exit_price"`

	Status string `gorm:"column:status;index"`

	BuyClientOrderID  string `gorm:"column:buy_client_order_id"`
	SellClientOrderID string `gorm:"column:sell_client_order_id"`

	BuyQuantityRaw       string `gorm:"column:buy_quantity_raw"`
	BuyQuantityFormatted string `gorm:"column:buy_quantity_formatted"`
	BuyExecutedQuantity  string `gorm:"column:buy_executed_quantity"`
	BuyFee               string `gorm:"column:buy_fee"`
	SellExecutedQuantity string `gorm:"column:sell_executed_quantity"`
	SellFee              string `gorm:"column:sell_fee"`

	Notes         string `gorm:"column:notes"`
	CreatedAtUnix int64  `gorm:"column:created_at"`
	UpdatedAtUnix int64  `gorm:"column:updated_at"`
}

func (TradeSignalModel) TableName() string { return "trade_signals" }

// SignalEventModel is an append-only audit row for one status transition.
type SignalEventModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	EventID       string         `gorm:"column:event_uuid;index"`
	SignalID      int64          `gorm:"column:signal_id;index"`
	FromStatus    string         `gorm:"column:from_status"`
	ToStatus      string         `gorm:"column:to_status"`
	Note          string         `gorm:"column:note"`
	Payload       datatypes.JSON `gorm:"column:payload"`
	CreatedAtUnix int64          `gorm:"column:created_at;index"`
}

func (SignalEventModel) TableName() string { return "signal_events" }

// BotUserModel backs the operator chat front-end. It never touches
// trade_signals.
type BotUserModel struct {
	ID             int64  `gorm:"column:id;primaryKey"`
	TelegramUserID int64  `gorm:"column:telegram_user_id;uniqueIndex"`
	Username       string `gorm:"column:username;uniqueIndex"`
	HashedPassword string `gorm:"column:hashed_password"`
	IsAdmin        bool   `gorm:"column:is_admin"`
	CreatedAtUnix  int64  `gorm:"column:created_at"`
}

func (BotUserModel) TableName() string { return "bot_users" }
