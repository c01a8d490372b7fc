package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SettingTicketsSold  = "tickets_sold"
	SettingTicketsTotal = "tickets_total"
	SettingPixKey       = "pix_key"
)

// Setting is a generic key/value row. Values are always strings.
type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Key       string    `bun:"key,unique,notnull" json:"key"`
	Value     string    `bun:"value,notnull" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// InventorySnapshot feeds the scarcity bar on the storefront.
type InventorySnapshot struct {
	Sold      int `json:"tickets_sold"`
	Total     int `json:"tickets_total"`
	Remaining int `json:"remaining"`
	Percent   int `json:"percent"`
}

// NewInventorySnapshot clamps remaining at zero and percent at 100.
func NewInventorySnapshot(sold, total int) InventorySnapshot {
	s := InventorySnapshot{Sold: sold, Total: total}
	if total > sold {
		s.Remaining = total - sold
	}
	if total > 0 && sold > 0 {
		s.Percent = sold * 100 / total
		if s.Percent > 100 {
			s.Percent = 100
		}
	}
	return s
}
