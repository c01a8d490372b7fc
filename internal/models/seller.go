package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Seller struct {
	bun.BaseModel `bun:"table:sellers"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Active     bool      `bun:"active,notnull,default:true" json:"active"`
	TotalSales int       `bun:"total_sales,notnull,default:0" json:"total_sales"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// SellerRanking is one leaderboard row, computed from orders rather than TotalSales.
type SellerRanking struct {
	Position int             `json:"position"`
	SellerID string          `json:"seller_id"`
	Name     string          `json:"name"`
	Active   bool            `json:"active"`
	Sales    int             `json:"sales"`
	Revenue  decimal.Decimal `json:"revenue"`
}
