package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InventoryHandler valorización y verificación del libro de lotes (protegido, solo lectura).
type InventoryHandler struct {
	valuation   *appinventory.ValuationUseCase
	policy      *appinventory.PolicySwitch
	consistency *appinventory.ConsistencyUseCase
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewInventoryHandler(
	valuation *appinventory.ValuationUseCase,
	policy *appinventory.PolicySwitch,
	consistency *appinventory.ConsistencyUseCase,
	validate *validator.Validate,
	log zerolog.Logger,
) *InventoryHandler {
	return &InventoryHandler{valuation: valuation, policy: policy, consistency: consistency, validate: validate, log: log}
}

// Valuation godoc
// @Summary      Valorización del inventario
// @Description  Valor de las unidades restantes según la política vigente. Filtra por producto o categoría.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "ID del producto"
// @Param        category_id  query  string  false  "ID de la categoría"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse  "UNKNOWN_POLICY"
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var q dto.ValuationQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(q); err != nil {
		return validationFailed(c, err)
	}
	ctx := c.UserContext()
	policy, err := h.policy.Get(ctx, companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	vals, err := h.valuation.Valuation(ctx, appinventory.ValuationFilter{
		CompanyID:  companyID,
		ProductID:  q.ProductID,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ValuationResponse{
		Policy:     policy.String(),
		Items:      make([]dto.ProductValuationResponse, 0, len(vals)),
		TotalValue: decimal.Zero,
	}
	for _, v := range vals {
		out.Items = append(out.Items, toProductValuationResponse(v))
		out.TotalValue = out.TotalValue.Add(v.TotalValue)
	}
	return c.JSON(out)
}

// ValuationByCategory godoc
// @Summary      Valorización por categoría
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CategoryValuationResponse
// @Router       /api/inventory/valuation/categories [get]
func (h *InventoryHandler) ValuationByCategory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	cats, err := h.valuation.ByCategory(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.CategoryValuationResponse, 0, len(cats))
	for _, cv := range cats {
		out = append(out, dto.CategoryValuationResponse{
			CategoryID:        cv.CategoryID,
			Products:          cv.Products,
			RemainingQuantity: cv.RemainingQuantity,
			TotalValue:        cv.TotalValue,
			Policy:            cv.Policy.String(),
		})
	}
	return c.JSON(out)
}

// Consistency godoc
// @Summary      Verificar libro de lotes
// @Description  Reporta productos cuyo stock difiere de la suma de lotes sin consumir. No corrige nada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "ID del producto"
// @Success      200  {object}  dto.ConsistencyResponse
// @Router       /api/inventory/consistency [get]
func (h *InventoryHandler) Consistency(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var q dto.ValuationQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(q); err != nil {
		return validationFailed(c, err)
	}
	drifts, err := h.consistency.Check(c.UserContext(), companyID, q.ProductID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ConsistencyResponse{Consistent: len(drifts) == 0, Drifts: make([]dto.StockDriftResponse, 0, len(drifts))}
	for _, d := range drifts {
		h.log.Warn().
			Str("company_id", companyID).
			Str("product_id", d.ProductID).
			Int64("current_stock", d.CurrentStock).
			Int64("ledger_remaining", d.LedgerRemaining).
			Msg("divergencia entre stock y libro de lotes")
		out.Drifts = append(out.Drifts, dto.StockDriftResponse{
			ProductID:       d.ProductID,
			CurrentStock:    d.CurrentStock,
			LedgerRemaining: d.LedgerRemaining,
			Difference:      d.Difference,
		})
	}
	return c.JSON(out)
}

func toProductValuationResponse(v inventory.ProductValuation) dto.ProductValuationResponse {
	return dto.ProductValuationResponse{
		ProductID:         v.ProductID,
		CategoryID:        v.CategoryID,
		RemainingQuantity: v.RemainingQuantity,
		AveragedUnitValue: v.AveragedUnitValue,
		TotalValue:        v.TotalValue,
		Policy:            v.Policy.String(),
	}
}
