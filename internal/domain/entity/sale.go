package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa una venta registrada. Los costos de cada línea quedan fijos
// al momento de la venta; un cambio posterior de política no los recalcula.
type Sale struct {
	ID        string
	CompanyID string
	Reference string // ticket, factura, etc.
	Policy    string // política vigente al registrar la venta
	TotalCost decimal.Decimal
	Lines     []SaleLine
	CreatedAt time.Time
	CreatedBy string
}

// SaleLine línea de venta con su costo base calculado por el motor de asignación.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitCost  decimal.Decimal // costo unitario para la venta (TotalCost / Quantity)
	TotalCost decimal.Decimal
	Lots      []SaleLineLot
}

// SaleLineLot detalle de consumo por lote de una línea de venta.
type SaleLineLot struct {
	LotID    int64
	Quantity int64
	UnitCost decimal.Decimal // costo del lote
}
