package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// CHECK que protegen stock y remanente de lotes; el resto son validaciones de entrada.
const (
	constraintProductStock = "ck_products_current_stock"
	constraintLotRemaining = "ck_inventory_lots_remaining"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isConcurrencyConflict serialización, deadlock o lock_timeout: la tx se revirtió completa.
func isConcurrencyConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// mapTxError traduce errores de PostgreSQL a errores de dominio al salir de una transacción.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	if isConcurrencyConflict(err) && !errors.Is(err, domain.ErrConcurrencyConflict) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeCheckViolation:
		switch pgErr.ConstraintName {
		case constraintProductStock:
			return fmt.Errorf("%w: %v", domain.ErrInsufficientStock, err)
		case constraintLotRemaining:
			return fmt.Errorf("%w: %v", domain.ErrInsufficientLotQuantity, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	case codeNumericOutOfRange:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}
