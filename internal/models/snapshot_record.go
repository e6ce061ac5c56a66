package models

import "gorm.io/gorm"

// SnapshotRecord is a locally recorded dashboard computation. It is an
// audit row, not the authoritative snapshot (that one lives in the
// external store).
type SnapshotRecord struct {
	gorm.Model
	DateKey       string  `gorm:"index" json:"date_key"`
	DailyProfit   float64 `json:"daily_profit"`
	HoldingProfit float64 `json:"holding_profit"`
	TotalProfit   float64 `json:"total_profit"`
	TotalCost     float64 `json:"total_cost"`
	Degraded      bool    `json:"degraded"`
}
