package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa una recepción de mercancía a un costo unitario fijo (capa de costo).
// QuantityReceived y UnitCost son inmutables; RemainingQuantity solo disminuye y solo
// la modifica el motor de asignación. Los lotes nunca se eliminan.
type Lot struct {
	ID                int64 // secuencial: orden de inserción, desempate FIFO/LIFO
	ProductID         string
	QuantityReceived  int64
	UnitCost          decimal.Decimal // costo al momento de la compra, no el costo actual del producto
	RemainingQuantity int64
	ReceivedAt        time.Time
	ReceivedBy        string // opcional, solo auditoría
	Note              string // "stock inicial", "reposición", etc.
	CreatedAt         time.Time
}

// Consumed devuelve las unidades ya asignadas a ventas.
func (l *Lot) Consumed() int64 {
	return l.QuantityReceived - l.RemainingQuantity
}

// Depleted indica que el lote ya no tiene unidades disponibles.
func (l *Lot) Depleted() bool {
	return l.RemainingQuantity == 0
}
