package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/rs/zerolog"
)

// retryAfterSeconds sugerencia al cliente tras un conflicto de concurrencia.
const retryAfterSeconds = "1"

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Orden importa: errores específicos antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser un entero positivo"},
	{domain.ErrInvalidCost, fiber.StatusBadRequest, "INVALID_COST", "el costo unitario debe ser mayor o igual a cero y tener máximo 4 decimales"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado"},
	{domain.ErrCategoryNotFound, fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "categoría no encontrada"},
	{domain.ErrLotNotFound, fiber.StatusNotFound, "LOT_NOT_FOUND", "lote no encontrado"},
	{domain.ErrSaleNotFound, fiber.StatusNotFound, "SALE_NOT_FOUND", "venta no encontrada"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInsufficientInventoryHistory, fiber.StatusConflict, "INSUFFICIENT_INVENTORY_HISTORY", "el libro de lotes no cubre el stock del producto; requiere conciliación"},
	{domain.ErrInsufficientLotQuantity, fiber.StatusConflict, "INSUFFICIENT_INVENTORY_HISTORY", "el libro de lotes no cubre el stock del producto; requiere conciliación"},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT", "conflicto de concurrencia, reintente"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	// Solo en lectura: en escritura el handler responde 400 antes de llegar aquí.
	{domain.ErrUnknownPolicy, fiber.StatusInternalServerError, "UNKNOWN_POLICY", "política de costeo configurada no reconocida"},
}

// writeError traduce un error de dominio a respuesta HTTP. Lo no mapeado es 500 y se registra.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			switch {
			case domain.IsRetryable(err):
				c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
				log.Warn().Err(err).Str("path", c.Path()).Msg("conflicto de concurrencia")
			case m.status >= fiber.StatusInternalServerError, domain.IsIntegrity(err), domain.IsConfiguration(err):
				log.Error().Err(err).Str("path", c.Path()).Str("code", m.code).Msg("error en petición")
			case domain.IsValidation(err):
				log.Debug().Err(err).Str("path", c.Path()).Msg("petición rechazada")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
