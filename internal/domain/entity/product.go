package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario (colaborador externo del motor de costeo).
// Cost es el último costo registrado: se usa para crear lotes en reposiciones sin costo explícito.
// Stock debe coincidir con la suma de RemainingQuantity de sus lotes.
type Product struct {
	ID         string
	CompanyID  string
	CategoryID string // vacío si no tiene categoría
	SKU        string // código único por empresa
	Name       string
	Price      decimal.Decimal // precio de venta
	Cost       decimal.Decimal // costo actual
	Stock      int64           // stock actual
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
