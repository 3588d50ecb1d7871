package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock > 0 crea el primer lote
// al costo CurrentCost.
type CreateProductRequest struct {
	SKU          string           `json:"sku" validate:"required,min=1,max=100"`
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	CategoryID   string           `json:"category_id" validate:"omitempty,uuid"`
	Price        decimal.Decimal  `json:"price"`
	CurrentCost  decimal.Decimal  `json:"current_cost"`
	InitialStock *decimal.Decimal `json:"initial_stock,omitempty"`
}

// UpdateCostRequest body para PATCH /api/products/:id/cost.
type UpdateCostRequest struct {
	CurrentCost decimal.Decimal `json:"current_cost"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	CategoryID   string          `json:"category_id,omitempty"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CurrentCost  decimal.Decimal `json:"current_cost"`
	CurrentStock int64           `json:"current_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
