package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
	StatusUsed      OrderStatus = "used"
)

// Label is the Portuguese badge shown on tickets and in the admin list.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPaid:
		return "Pago"
	case StatusUsed:
		return "Utilizado"
	case StatusCancelled:
		return "Cancelado"
	default:
		return "Pendente"
	}
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID               string          `bun:"id,pk" json:"id"`
	OrderCode        string          `bun:"order_code,unique,notnull" json:"order_code"`
	CustomerName     string          `bun:"customer_name,notnull" json:"customer_name"`
	CustomerWhatsApp string          `bun:"customer_whatsapp,notnull" json:"customer_whatsapp"`
	SellerID         *string         `bun:"seller_id" json:"seller_id"`
	ProductType      string          `bun:"product_type,notnull" json:"product_type"`
	ProductName      string          `bun:"product_name,notnull" json:"product_name"`
	Price            decimal.Decimal `bun:"price,type:numeric(10,2),notnull" json:"price"`
	Tickets          int             `bun:"tickets,notnull,default:1" json:"tickets"`
	Status           OrderStatus     `bun:"status,notnull" json:"status"`
	ReceiptURL       string          `bun:"receipt_url,nullzero" json:"receipt_url,omitempty"`
	UsedAt           *time.Time      `bun:"used_at" json:"used_at"`
	CreatedAt        time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status OrderStatus
	Search string
	Limit  int
}

type CheckoutResponse struct {
	OrderID   string `json:"order_id"`
	OrderCode string `json:"order_code"`
	TicketURL string `json:"ticket_url"`
}

// TicketView is what the ticket route renders after purchase.
type TicketView struct {
	Order       *Order `json:"order"`
	QRPayload   string `json:"qr_payload"`
	StatusLabel string `json:"status_label"`
	Valid       bool   `json:"valid"`
	QRImageURL  string `json:"qr_image_url"`
}
