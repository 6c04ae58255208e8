package postgres

import (
	"context"
	"time"

	"marketcrawler/pkg/market"

	"gorm.io/gorm/clause"
)

var candleColumns = []clause.Column{
	{Name: "exchange"},
	{Name: "market_type"},
	{Name: "pair"},
	{Name: "period"},
	{Name: "start"},
}

// UpsertKline inserts a candle or refreshes the prices and volumes of an
// existing one.
func (p *PostgresClient) UpsertKline(ctx context.Context, record *KlineRecord) error {
	return p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: candleColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "close", "high", "low", "volume", "quote_volume", "updated_at",
		}),
	}).Create(record).Error
}

func (p *PostgresClient) GetKline(ctx context.Context, exchange, marketType, pair, period string, start time.Time) (*KlineRecord, error) {
	var kline KlineRecord
	err := p.DB.WithContext(ctx).
		Where("exchange = ? AND market_type = ? AND pair = ? AND period = ? AND start = ?",
			exchange, marketType, pair, period, start).
		First(&kline).Error

	if err != nil {
		return nil, err
	}
	return &kline, nil
}

func (p *PostgresClient) DeleteOldKlines(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("start < ?", before).
		Delete(&KlineRecord{}).Error
}

// ToKlineRecord converts a canonical kline into a KlineRecord for DB insertion.
func ToKlineRecord(k *market.Kline) *KlineRecord {
	return &KlineRecord{
		Exchange:    k.Exchange,
		MarketType:  string(k.MarketType),
		Pair:        k.Pair,
		Period:      k.Period,
		Start:       time.UnixMilli(k.Timestamp).UTC(),
		RawPair:     k.RawPair,
		Channel:     k.Channel,
		Open:        k.Open,
		Close:       k.Close,
		High:        k.High,
		Low:         k.Low,
		Volume:      k.Volume,
		QuoteVolume: k.QuoteVolume,
	}
}
