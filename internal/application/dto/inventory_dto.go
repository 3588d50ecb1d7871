package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordLotRequest body para POST /api/products/:id/lots. Sin unit_cost se usa el costo actual
// del producto.
type RecordLotRequest struct {
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
	Note       string           `json:"note" validate:"max=200"`
}

// LotResponse lote del libro.
type LotResponse struct {
	ID                int64           `json:"id"`
	ProductID         string          `json:"product_id"`
	QuantityReceived  int64           `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	ConsumedQuantity  int64           `json:"consumed_quantity"`
	ReceivedAt        time.Time       `json:"received_at"`
	ReceivedBy        string          `json:"received_by,omitempty"`
	Note              string          `json:"note,omitempty"`
}

// ConsumeRequest body para POST /api/products/:id/consumptions: salida sin venta (merma,
// uso interno) costeada con la política vigente.
type ConsumeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason" validate:"max=200"`
}

// AllocationResponse costo de una salida y lotes consumidos.
type AllocationResponse struct {
	ProductID string                `json:"product_id"`
	Policy    string                `json:"policy"`
	Quantity  int64                 `json:"quantity"`
	UnitCost  decimal.Decimal       `json:"unit_cost"`
	TotalCost decimal.Decimal       `json:"total_cost"`
	Lots      []SaleLineLotResponse `json:"lots"`
}

// LotListResponse historial (o lotes sin consumir en orden de la política).
type LotListResponse struct {
	Items  []LotResponse `json:"items"`
	Policy string        `json:"policy,omitempty"`
	Page   *PageResponse `json:"page,omitempty"`
}

// ValuationQuery filtros de GET /api/inventory/valuation.
type ValuationQuery struct {
	ProductID  string `query:"product_id" validate:"omitempty,uuid"`
	CategoryID string `query:"category_id" validate:"omitempty,uuid"`
}

// ProductValuationResponse valor del inventario restante de un producto.
type ProductValuationResponse struct {
	ProductID         string          `json:"product_id"`
	CategoryID        string          `json:"category_id,omitempty"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	AveragedUnitValue decimal.Decimal `json:"averaged_unit_value"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Policy            string          `json:"policy"`
}

// ValuationResponse valorización con total general.
type ValuationResponse struct {
	Policy     string                     `json:"policy"`
	Items      []ProductValuationResponse `json:"items"`
	TotalValue decimal.Decimal            `json:"total_value"`
}

type CategoryValuationResponse struct {
	CategoryID        string          `json:"category_id"`
	Products          int             `json:"products"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Policy            string          `json:"policy"`
}

// StockDriftResponse producto con stock distinto a la suma de sus lotes.
type StockDriftResponse struct {
	ProductID       string `json:"product_id"`
	CurrentStock    int64  `json:"current_stock"`
	LedgerRemaining int64  `json:"ledger_remaining"`
	Difference      int64  `json:"difference"`
}

type ConsistencyResponse struct {
	Consistent bool                 `json:"consistent"`
	Drifts     []StockDriftResponse `json:"drifts"`
}
