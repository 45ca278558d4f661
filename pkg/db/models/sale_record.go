package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is one completed checkout, immutable once written.
type SaleRecord struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null;index"`
	TableLabel string          `gorm:"column:table_label;not null"`
	Items      json.RawMessage `gorm:"column:items;type:text;not null"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:numeric;not null"`
	Tax        decimal.Decimal `gorm:"column:tax;type:numeric;not null"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
