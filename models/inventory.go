package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList persists as a JSON column of strings.
type StringList []string

func (sl StringList) Value() (driver.Value, error) {
	if sl == nil {
		sl = StringList{}
	}
	return json.Marshal(sl)
}

func (sl *StringList) Scan(value interface{}) error {
	raw, ok := value.([]byte)
	if !ok {
		str, sok := value.(string)
		if !sok {
			return errors.New("string list column must scan from bytes")
		}
		raw = []byte(str)
	}
	if len(raw) == 0 {
		*sl = StringList{}
		return nil
	}
	return json.Unmarshal(raw, sl)
}

// InventoryRecord is externally maintained catalog data; the core only reads
// it. Alts is the record's own fallback chain in priority order.
type InventoryRecord struct {
	Sku               string     `gorm:"primaryKey;size:100" json:"sku"`
	Stock             int        `gorm:"not null;default:0" json:"stock"`
	PreferredSupplier string     `gorm:"size:100" json:"preferredSupplier"`
	Alts              StringList `gorm:"type:json" json:"alts"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// SubstitutionPriority overrides a SKU's own Alts chain when present.
type SubstitutionPriority struct {
	Sku       string     `gorm:"primaryKey;size:100" json:"sku"`
	Chain     StringList `gorm:"type:json" json:"chain"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}
