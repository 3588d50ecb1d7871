package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductUseCase alta y consulta de productos. Stock solo cambia vía lotes y ventas.
type ProductUseCase struct {
	txRunner     appinventory.TxRunner
	ledger       *appinventory.LotLedger
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        appinventory.ValuationCache
	log          zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner appinventory.TxRunner,
	ledger *appinventory.LotLedger,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cache appinventory.ValuationCache,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		repo:         repo,
		categoryRepo: categoryRepo,
		cache:        cache,
		log:          log,
	}
}

// Create inserta el producto con stock 0 y, si InitialStock > 0, registra el lote inicial al
// costo CurrentCost en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !inventory.ValidUnitCost(in.CurrentCost) {
		return nil, domain.ErrInvalidCost
	}
	var initial int64
	if in.InitialStock != nil && !in.InitialStock.IsZero() {
		q, err := dto.WholeQuantity(*in.InitialStock)
		if err != nil {
			return nil, err
		}
		initial = q
	}

	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.CategoryID != "" {
		cat, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil || cat.CompanyID != companyID {
			return nil, domain.ErrCategoryNotFound
		}
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CategoryID: in.CategoryID,
		SKU:        in.SKU,
		Name:       in.Name,
		Price:      in.Price,
		Cost:       in.CurrentCost,
		Stock:      0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if initial == 0 {
			return nil
		}
		cost := in.CurrentCost
		_, err := uc.ledger.RecordLotInTx(ctx, lotRepo, productRepo, product, appinventory.RecordLotInput{
			CompanyID:  companyID,
			ProductID:  product.ID,
			Quantity:   initial,
			UnitCost:   &cost,
			ReceivedAt: now,
			ReceivedBy: actorID,
			Note:       appinventory.NoteInitialStock,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", product.ID).
		Str("sku", product.SKU).
		Int64("initial_stock", initial).
		Msg("producto creado")
	if initial > 0 && uc.cache != nil {
		if err := uc.cache.Bump(ctx, companyID); err != nil {
			uc.log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo invalidar cache de valorización")
		}
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa; ErrProductNotFound si no existe o es de otra empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateCost cambia el costo actual. No modifica lotes existentes ni el stock: solo afecta a
// futuras reposiciones sin costo explícito.
func (uc *ProductUseCase) UpdateCost(ctx context.Context, companyID, id string, cost decimal.Decimal) (*dto.ProductResponse, error) {
	if !inventory.ValidUnitCost(cost) {
		return nil, domain.ErrInvalidCost
	}
	product, err := uc.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateCost(ctx, id, cost); err != nil {
		return nil, err
	}
	product.Cost = cost
	product.UpdatedAt = time.Now().UTC()
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) find(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		CategoryID:   p.CategoryID,
		SKU:          p.SKU,
		Name:         p.Name,
		Price:        p.Price,
		CurrentCost:  p.Cost,
		CurrentStock: p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
