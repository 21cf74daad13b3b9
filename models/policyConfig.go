package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyConfig is administrative data, one row per cost center, read-only
// from the core's perspective.
type PolicyConfig struct {
	CostCenter string          `gorm:"primaryKey;size:100" json:"costCenter"`
	Budget     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"budget"`
	PerItemCap decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"perItemCap"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}
