package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is owned exclusively by its PurchaseRequest; items are immutable
// after creation.
type LineItem struct {
	Sku   string          `json:"sku" binding:"required" validate:"required"`
	Qty   int             `json:"qty" binding:"required,gt=0" validate:"required,gt=0"`
	Price decimal.Decimal `json:"price"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Qty)))
}

// LineItems persists as a JSON column. The in-memory representation is never
// a raw string; serialization happens only at the storage boundary.
type LineItems []LineItem

func (li LineItems) Value() (driver.Value, error) {
	return json.Marshal(li)
}

func (li *LineItems) Scan(value interface{}) error {
	raw, ok := value.([]byte)
	if !ok {
		str, sok := value.(string)
		if !sok {
			return errors.New("line items column must scan from bytes")
		}
		raw = []byte(str)
	}
	if len(raw) == 0 {
		*li = nil
		return nil
	}
	return json.Unmarshal(raw, li)
}

// Total returns sum(qty * price) over the items.
func (li LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range li {
		total = total.Add(item.LineTotal())
	}
	return total
}

type PurchaseRequest struct {
	ID         string                `gorm:"primaryKey;size:36" json:"id"`
	Requester  string                `gorm:"size:255;not null" json:"requester"`
	CostCenter string                `gorm:"size:100;index;not null" json:"costCenter"`
	Items      LineItems             `gorm:"type:json;not null" json:"items"`
	Total      decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"total"`
	Status     PurchaseRequestStatus `gorm:"type:enum('OPEN','APPROVED','REJECTED');not null;default:'OPEN'" json:"status"`
	CreatedAt  time.Time             `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt  time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (pr PurchaseRequest) GetId() string {
	return pr.ID
}

type NewPurchaseRequest struct {
	Requester  string     `json:"requester" binding:"required" validate:"required"`
	CostCenter string     `json:"costCenter" binding:"required" validate:"required"`
	Items      []LineItem `json:"items" binding:"required,dive" validate:"required,dive"`
	// Total is optional; when present it must equal sum(qty*price).
	Total *decimal.Decimal `json:"total"`
}
