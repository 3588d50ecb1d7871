package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/application/usecase"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/rs/zerolog"
)

// ProductHandler productos y su libro de lotes (protegido).
type ProductHandler struct {
	uc       *usecase.ProductUseCase
	ledger   *appinventory.LotLedger
	engine   *appinventory.AllocationEngine
	policy   *appinventory.PolicySwitch
	validate *validator.Validate
	log      zerolog.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(
	uc *usecase.ProductUseCase,
	ledger *appinventory.LotLedger,
	engine *appinventory.AllocationEngine,
	policy *appinventory.PolicySwitch,
	validate *validator.Validate,
	log zerolog.Logger,
) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger, engine: engine, policy: policy, validate: validate, log: log}
}

// Create godoc
// @Summary      Crear producto
// @Description  Con initial_stock > 0 registra el lote inicial al costo current_cost.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "sku, name, category_id, price, current_cost, initial_stock"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), companyID, GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(page); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.List(c.UserContext(), companyID, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateCost godoc
// @Summary      Actualizar costo actual
// @Description  No modifica lotes existentes; aplica a reposiciones sin costo explícito.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del producto"
// @Param        body  body  dto.UpdateCostRequest  true  "current_cost"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/cost [patch]
func (h *ProductHandler) UpdateCost(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.UpdateCostRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateCost(c.UserContext(), companyID, id, in.CurrentCost)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RecordLot godoc
// @Summary      Registrar lote (reposición)
// @Description  Crea un lote con remaining = quantity y suma la cantidad al stock del producto.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del producto"
// @Param        body  body  dto.RecordLotRequest  true  "quantity, unit_cost (opcional), received_at, note"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots [post]
func (h *ProductHandler) RecordLot(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.RecordLotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	qty, err := dto.WholeQuantity(in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	input := appinventory.RecordLotInput{
		CompanyID:  companyID,
		ProductID:  id,
		Quantity:   qty,
		UnitCost:   in.UnitCost,
		ReceivedBy: GetUserID(c),
		Note:       in.Note,
	}
	if in.ReceivedAt != nil {
		input.ReceivedAt = in.ReceivedAt.UTC()
	}
	lot, err := h.ledger.RecordLot(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(*lot))
}

// Lots godoc
// @Summary      Libro de lotes del producto
// @Description  unconsumed=true devuelve solo lotes con unidades, en el orden de consumo de la política vigente.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        unconsumed  query  bool    false  "solo lotes sin consumir"
// @Param        limit       query  int     false  "máximo 100 (historial)"
// @Param        offset      query  int     false  "desplazamiento (historial)"
// @Success      200  {object}  dto.LotListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots [get]
func (h *ProductHandler) Lots(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx := c.UserContext()
	if _, err := h.uc.GetByID(ctx, companyID, id); err != nil {
		return writeError(c, h.log, err)
	}

	if c.QueryBool("unconsumed") {
		policy, err := h.policy.Get(ctx, companyID)
		if err != nil {
			return writeError(c, h.log, err)
		}
		it, err := h.ledger.UnconsumedLots(ctx, id, policy)
		if err != nil {
			return writeError(c, h.log, err)
		}
		lots, err := it.Collect()
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.LotListResponse{Items: toLotResponses(lots), Policy: policy.String()})
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(page); err != nil {
		return validationFailed(c, err)
	}
	page.DefaultPage()
	lots, err := h.ledger.History(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LotListResponse{
		Items: toLotResponses(lots),
		Page:  &dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetLot godoc
// @Summary      Lote del producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del producto"
// @Param        lotId  path  int     true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots/{lotId} [get]
func (h *ProductHandler) GetLot(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	lotID, err := c.ParamsInt("lotId")
	if err != nil || lotID <= 0 {
		return writeError(c, h.log, domain.ErrLotNotFound)
	}
	ctx := c.UserContext()
	if _, err := h.uc.GetByID(ctx, companyID, id); err != nil {
		return writeError(c, h.log, err)
	}
	lot, err := h.ledger.Lot(ctx, id, int64(lotID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLotResponse(*lot))
}

// Consume godoc
// @Summary      Salida sin venta
// @Description  Consume lotes según la política vigente (merma, uso interno) y descuenta el stock.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del producto"
// @Param        body  body  dto.ConsumeRequest  true  "quantity, reason"
// @Success      201   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/consumptions [post]
func (h *ProductHandler) Consume(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	qty, err := dto.WholeQuantity(in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	alloc, err := h.engine.Allocate(c.UserContext(), companyID, id, qty)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().
		Str("product_id", id).
		Int64("quantity", qty).
		Str("total_cost", alloc.TotalCost.String()).
		Str("actor", GetUserID(c)).
		Str("reason", in.Reason).
		Msg("salida sin venta")
	return c.Status(fiber.StatusCreated).JSON(toAllocationResponse(alloc))
}

// productIDParam un :id que no es UUID no puede existir.
func productIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := uuid.Validate(id); err != nil {
		return "", domain.ErrProductNotFound
	}
	return id, nil
}

func toLotResponse(l entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		QuantityReceived:  l.QuantityReceived,
		UnitCost:          l.UnitCost,
		RemainingQuantity: l.RemainingQuantity,
		ConsumedQuantity:  l.Consumed(),
		ReceivedAt:        l.ReceivedAt,
		ReceivedBy:        l.ReceivedBy,
		Note:              l.Note,
	}
}

func toLotResponses(lots []entity.Lot) []dto.LotResponse {
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return out
}

func toAllocationResponse(a *inventory.Allocation) dto.AllocationResponse {
	out := dto.AllocationResponse{
		ProductID: a.ProductID,
		Policy:    a.Policy.String(),
		Quantity:  a.Quantity,
		UnitCost:  a.UnitCostForSale,
		TotalCost: a.TotalCost,
		Lots:      make([]dto.SaleLineLotResponse, 0, len(a.Consumptions)),
	}
	for _, c := range a.Consumptions {
		out.Lots = append(out.Lots, dto.SaleLineLotResponse{LotID: c.LotID, Quantity: c.Quantity, UnitCost: c.UnitCost})
	}
	return out
}
