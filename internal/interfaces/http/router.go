package http

import (
	"github.com/gofiber/fiber/v2"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/application/usecase"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	Ledger      *appinventory.LotLedger
	Engine      *appinventory.AllocationEngine
	RecordSale  *appinventory.RecordSaleUseCase
	Valuation   *appinventory.ValuationUseCase
	Consistency *appinventory.ConsistencyUseCase
	Policy      *appinventory.PolicySwitch
	JWTSecret   string
	JWTIssuer   string
	ServiceName string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := newValidator()
	log := deps.Logger

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	adminOnly := RequireRole(RoleAdmin)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, validate, log)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Get("/", anyRole, categoryHandler.List)

	// Products y su libro de lotes
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger, deps.Engine, deps.Policy, validate, log)
	products.Post("/", RequireRole(RoleAdmin, RoleBodeguero), productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Patch("/:id/cost", adminOnly, productHandler.UpdateCost)
	products.Post("/:id/lots", RequireRole(RoleAdmin, RoleBodeguero), productHandler.RecordLot)
	products.Get("/:id/lots", anyRole, productHandler.Lots)
	products.Get("/:id/lots/:lotId", anyRole, productHandler.GetLot)
	products.Post("/:id/consumptions", RequireRole(RoleAdmin, RoleBodeguero), productHandler.Consume)

	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.RecordSale, validate, log)
	sales.Post("/", RequireRole(RoleAdmin, RoleVendedor), saleHandler.Create)
	sales.Get("/:id", anyRole, saleHandler.GetByID)

	// Valorización (solo lectura)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Valuation, deps.Policy, deps.Consistency, validate, log)
	invGroup.Get("/valuation", anyRole, inventoryHandler.Valuation)
	invGroup.Get("/valuation/categories", anyRole, inventoryHandler.ValuationByCategory)
	invGroup.Get("/consistency", adminOnly, inventoryHandler.Consistency)

	settings := protected.Group("/settings")
	settingsHandler := NewSettingsHandler(deps.Policy, validate, log)
	settings.Get("/costing-policy", anyRole, settingsHandler.GetCostingPolicy)
	settings.Put("/costing-policy", adminOnly, settingsHandler.SetCostingPolicy)
}
