package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/rs/zerolog"
)

// SettingsHandler política de costeo de la empresa (protegido).
type SettingsHandler struct {
	policy   *appinventory.PolicySwitch
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSettingsHandler(policy *appinventory.PolicySwitch, validate *validator.Validate, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{policy: policy, validate: validate, log: log}
}

// GetCostingPolicy godoc
// @Summary      Política de costeo vigente
// @Description  Sin configuración devuelve FIFO con defaulted=true.
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CostingPolicyResponse
// @Failure      500  {object}  dto.ErrorResponse  "UNKNOWN_POLICY"
// @Router       /api/settings/costing-policy [get]
func (h *SettingsHandler) GetCostingPolicy(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	st, err := h.policy.Current(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CostingPolicyResponse{Policy: st.Policy.String(), Defaulted: st.Defaulted, UpdatedBy: st.UpdatedBy}
	if !st.UpdatedAt.IsZero() {
		at := st.UpdatedAt
		out.UpdatedAt = &at
	}
	return c.JSON(out)
}

// SetCostingPolicy godoc
// @Summary      Cambiar política de costeo
// @Description  Efecto inmediato sobre ventas y valorizaciones siguientes; no recalcula ventas registradas.
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CostingPolicyRequest  true  "FIFO, LIFO o AVERAGE"
// @Success      200   {object}  dto.CostingPolicyResponse
// @Failure      400   {object}  dto.ErrorResponse  "UNKNOWN_POLICY"
// @Router       /api/settings/costing-policy [put]
func (h *SettingsHandler) SetCostingPolicy(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CostingPolicyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}
	actor := GetUserID(c)
	p, err := h.policy.Set(c.UserContext(), companyID, in.Policy, actor)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPolicy) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_POLICY", Message: "política no soportada, valores válidos: " + policyNames()})
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CostingPolicyResponse{Policy: p.String(), UpdatedBy: actor})
}

func policyNames() string {
	all := inventory.AllPolicies()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}
