package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Validación: se rechazan antes de cualquier mutación.
	ErrInvalidQuantity = errors.New("cantidad inválida: debe ser un entero positivo")
	ErrInvalidCost     = errors.New("costo unitario inválido: debe ser mayor o igual a cero, menor a 10^14 y con máximo 4 decimales")

	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrCategoryNotFound = errors.New("categoría no encontrada")
	ErrSaleNotFound     = errors.New("venta no encontrada")
	ErrLotNotFound      = errors.New("lote no encontrado")

	// Integridad: nunca se corrigen automáticamente.
	ErrInsufficientStock            = errors.New("stock insuficiente")
	ErrInsufficientLotQuantity      = errors.New("cantidad insuficiente en el lote")
	ErrInsufficientInventoryHistory = errors.New("historial de lotes insuficiente para la cantidad solicitada")

	// Concurrencia: el llamador puede reintentar con los mismos datos.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")

	// Configuración: fail-closed.
	ErrUnknownPolicy = errors.New("política de costeo desconocida")
)

// LedgerDriftError detalla un ErrInsufficientInventoryHistory: el stock del producto
// y la suma de lotes sin consumir divergieron.
type LedgerDriftError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *LedgerDriftError) Error() string {
	return fmt.Sprintf("%s: producto %s solicitado=%d disponible_en_lotes=%d",
		ErrInsufficientInventoryHistory.Error(), e.ProductID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientInventoryHistory).
func (e *LedgerDriftError) Is(target error) bool {
	return target == ErrInsufficientInventoryHistory
}

// IsValidation indica errores corregibles por el llamador.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidCost)
}

// IsIntegrity indica divergencias entre stock y libro de lotes.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrInsufficientInventoryHistory) ||
		errors.Is(err, ErrInsufficientLotQuantity)
}

// IsRetryable indica fallos de concurrencia sin efectos secundarios.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsConfiguration indica configuración corrupta.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrUnknownPolicy)
}
