package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type JSONMap map[string]interface{}

// ToolInvocation is one step of an assessment's evidence trace.
type ToolInvocation struct {
	Tool   string  `json:"tool"`
	Args   JSONMap `json:"args"`
	Result JSONMap `json:"result"`
}

// Trace persists as a JSON column, same boundary rule as LineItems.
type Trace []ToolInvocation

func (t Trace) Value() (driver.Value, error) {
	if t == nil {
		t = Trace{}
	}
	return json.Marshal(t)
}

func (t *Trace) Scan(value interface{}) error {
	raw, ok := value.([]byte)
	if !ok {
		str, sok := value.(string)
		if !sok {
			return errors.New("trace column must scan from bytes")
		}
		raw = []byte(str)
	}
	if len(raw) == 0 {
		*t = Trace{}
		return nil
	}
	return json.Unmarshal(raw, t)
}

// Assessment is an append-only audit record: never updated or deleted after
// creation. It references its PurchaseRequest but does not own it; a PR may
// accumulate many assessments, and "latest" means maximum CreatedAt.
type Assessment struct {
	ID        string             `gorm:"primaryKey;size:36" json:"id"`
	PrId      string             `gorm:"size:36;index;not null" json:"prId"`
	Decision  AssessmentDecision `gorm:"type:enum('APPROVE','REJECT','NEEDS_INFO');not null" json:"decision"`
	Reason    string             `gorm:"type:text" json:"reason"`
	Trace     Trace              `gorm:"type:json" json:"trace"`
	CreatedAt time.Time          `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (a Assessment) GetId() string {
	return a.ID
}
