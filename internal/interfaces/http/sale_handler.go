package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/rs/zerolog"
)

// SaleHandler registro y consulta de ventas (protegido).
type SaleHandler struct {
	uc       *appinventory.RecordSaleUseCase
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSaleHandler(uc *appinventory.RecordSaleUseCase, validate *validator.Validate, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, validate: validate, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Asigna cada línea a lotes según la política vigente y descuenta stock de forma atómica.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "reference, lines[product_id, quantity]"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK, INSUFFICIENT_INVENTORY_HISTORY o CONCURRENCY_CONFLICT"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	lines := make([]appinventory.SaleLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		qty, err := dto.WholeQuantity(l.Quantity)
		if err != nil {
			return writeError(c, h.log, err)
		}
		lines = append(lines, appinventory.SaleLineInput{ProductID: l.ProductID, Quantity: qty})
	}
	sale, err := h.uc.RecordSale(c.UserContext(), appinventory.RecordSaleInput{
		CompanyID: companyID,
		ActorID:   GetUserID(c),
		Reference: in.Reference,
		Lines:     lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Description  Devuelve el costo base registrado al momento de la venta, aunque la política haya cambiado.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if err := uuid.Validate(id); err != nil {
		return writeError(c, h.log, domain.ErrSaleNotFound)
	}
	sale, err := h.uc.GetSale(c.UserContext(), companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:        s.ID,
		Reference: s.Reference,
		Policy:    s.Policy,
		TotalCost: s.TotalCost,
		Lines:     make([]dto.SaleLineResponse, 0, len(s.Lines)),
		CreatedAt: s.CreatedAt,
		CreatedBy: s.CreatedBy,
	}
	for _, l := range s.Lines {
		line := dto.SaleLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			TotalCost: l.TotalCost,
			Lots:      make([]dto.SaleLineLotResponse, 0, len(l.Lots)),
		}
		for _, lot := range l.Lots {
			line.Lots = append(line.Lots, dto.SaleLineLotResponse{LotID: lot.LotID, Quantity: lot.Quantity, UnitCost: lot.UnitCost})
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}
