package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/application/usecase"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-costeo/internal/interfaces/http"
	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
)

// backend repositorios de lectura y TxRunner del almacenamiento elegido.
type backend struct {
	txRunner   appinventory.TxRunner
	lots       repository.LotRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	sales      repository.SaleRepository
	settings   repository.SettingsRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage.Backend).Msg("inicializar almacenamiento")
	}
	defer be.close()

	valCache, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	policy := appinventory.NewPolicySwitch(be.settings, valCache, log.Component("policy"))
	ledger := appinventory.NewLotLedger(be.txRunner, be.lots, valCache, log.Component("ledger"))
	engine := appinventory.NewAllocationEngine(be.txRunner, policy, valCache, log.Component("allocation"))
	recordSaleUC := appinventory.NewRecordSaleUseCase(be.txRunner, engine, policy, be.sales, valCache, log.Component("sales"))
	valuationUC := appinventory.NewValuationUseCase(be.txRunner, policy, valCache, cfg.Cache.ValuationTTL(), log.Component("valuation"))
	consistencyUC := appinventory.NewConsistencyUseCase(be.txRunner)
	productUC := usecase.NewProductUseCase(be.txRunner, ledger, be.products, be.categories, valCache, log.Component("products"))
	categoryUC := usecase.NewCategoryUseCase(be.categories)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Costeo API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		Ledger:      ledger,
		Engine:      engine,
		RecordSale:  recordSaleUC,
		Valuation:   valuationUC,
		Consistency: consistencyUC,
		Policy:      policy,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		ServiceName: cfg.App.Name,
		Logger:      log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Storage.Backend == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			txRunner:   memory.NewTxRunner(store),
			lots:       store.Lots(),
			products:   store.Products(),
			categories: store.Categories(),
			sales:      store.Sales(),
			settings:   store.Settings(),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := migrateUp(ctx, cfg.DB, log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		txRunner:   postgres.NewTxRunner(pool, cfg.DB.LockTimeout()),
		lots:       postgres.NewLotRepository(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		settings:   postgres.NewSettingsRepository(pool),
		close:      pool.Close,
	}, nil
}

// migrateUp usa un pool propio: cerrar el migrador cierra su conexión.
func migrateUp(ctx context.Context, cfg config.DBConfig, log *logger.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	m, err := postgres.NewMigrator(pool, log.Component("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// openCache Redis si está configurado y responde; si no, cache local del proceso.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (appinventory.ValuationCache, func()) {
	if cfg.Cache.ValuationTTL() <= 0 {
		return cache.NoopValuationCache{}, func() {}
	}
	if cfg.Redis.Enabled() {
		rc := cache.NewRedisValuationCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rc.Ping(pingCtx)
		if err == nil {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("cache de valorización en Redis")
			return rc, func() { _ = rc.Close() }
		}
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, se usa cache local")
		_ = rc.Close()
	}
	return cache.NewLocalValuationCache(), func() {}
}
