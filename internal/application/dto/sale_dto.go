package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest una línea de venta.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RecordSaleRequest body para POST /api/sales.
type RecordSaleRequest struct {
	Reference string            `json:"reference" validate:"max=100"`
	Lines     []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type SaleLineLotResponse struct {
	LotID    int64           `json:"lot_id"`
	Quantity int64           `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type SaleLineResponse struct {
	ProductID string                `json:"product_id"`
	Quantity  int64                 `json:"quantity"`
	UnitCost  decimal.Decimal       `json:"unit_cost"`
	TotalCost decimal.Decimal       `json:"total_cost"`
	Lots      []SaleLineLotResponse `json:"lots"`
}

// SaleResponse venta con el costo base registrado al momento de la venta.
type SaleResponse struct {
	ID        string             `json:"id"`
	Reference string             `json:"reference,omitempty"`
	Policy    string             `json:"policy"`
	TotalCost decimal.Decimal    `json:"total_cost"`
	Lines     []SaleLineResponse `json:"lines"`
	CreatedAt time.Time          `json:"created_at"`
	CreatedBy string             `json:"created_by,omitempty"`
}
