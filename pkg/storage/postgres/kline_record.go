package postgres

import "time"

// KlineRecord represents a canonical candlestick stored in the database. The
// row of an open candle is overwritten by every update until it closes.
type KlineRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Exchange   string    `gorm:"type:varchar(32);not null;index:idx_kline_candle,unique"`
	MarketType string    `gorm:"type:varchar(16);not null;index:idx_kline_candle,unique"`
	Pair       string    `gorm:"type:text;not null;index:idx_kline_pair;index:idx_kline_candle,unique"`
	Period     string    `gorm:"type:varchar(10);not null;index:idx_kline_candle,unique"`
	Start      time.Time `gorm:"not null;index:idx_kline_candle,unique"`

	RawPair string `gorm:"type:text;not null"`
	Channel string `gorm:"type:text;not null"`

	Open  float64 `gorm:"type:numeric;not null"`
	Close float64 `gorm:"type:numeric;not null"`
	High  float64 `gorm:"type:numeric;not null"`
	Low   float64 `gorm:"type:numeric;not null"`

	Volume      float64 `gorm:"type:numeric;not null"`
	QuoteVolume float64 `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (KlineRecord) TableName() string {
	return "kline_record"
}
