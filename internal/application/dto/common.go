package dto

import (
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/shopspring/decimal"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WholeQuantity convierte una cantidad recibida como decimal a unidades enteras.
// Cero, negativos o fracciones devuelven ErrInvalidQuantity.
func WholeQuantity(q decimal.Decimal) (int64, error) {
	if !q.IsInteger() || !q.IsPositive() {
		return 0, domain.ErrInvalidQuantity
	}
	if !q.LessThanOrEqual(decimal.NewFromInt(maxQuantity)) {
		return 0, domain.ErrInvalidQuantity
	}
	return q.IntPart(), nil
}

// maxQuantity cota de una sola operación; evita desbordes al sumar en int64.
const maxQuantity = 1_000_000_000
