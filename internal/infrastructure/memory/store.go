// Package memory implementa los puertos de persistencia en memoria. Sirve como backend de
// desarrollo (STORAGE_BACKEND=memory) y para pruebas de los casos de uso.
package memory

import (
	"context"
	"errors"
	"sync"

	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ appinventory.TxRunner = (*TxRunner)(nil)

// ErrReadOnly escritura dentro de una transacción de solo lectura.
var ErrReadOnly = errors.New("memory: transacción de solo lectura")

type state struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	lots       map[int64]entity.Lot
	lotSeq     int64
	sales      map[string]entity.Sale
	settings   map[string]entity.CostingSetting
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		lots:       make(map[int64]entity.Lot),
		sales:      make(map[string]entity.Sale),
		settings:   make(map[string]entity.CostingSetting),
	}
}

// clone copia profunda: la transacción trabaja sobre la copia y solo se publica en Commit.
func (s *state) clone() *state {
	c := newState()
	c.lotSeq = s.lotSeq
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

func cloneSale(src entity.Sale) entity.Sale {
	dst := src
	dst.Lines = make([]entity.SaleLine, len(src.Lines))
	for i, l := range src.Lines {
		dst.Lines[i] = l
		dst.Lines[i].Lots = append([]entity.SaleLineLot(nil), l.Lots...)
	}
	return dst
}

// Store estado compartido protegido por un RWMutex. Las transacciones de escritura toman el
// lock exclusivo durante toda su duración: equivale a bloqueo pesimista a nivel de tienda.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// binding indica cómo un repositorio accede al estado.
type binding struct {
	store    *Store
	tx       *state // no nil dentro de una transacción
	readOnly bool
}

func (b binding) read(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.state)
}

func (b binding) write(fn func(st *state) error) error {
	if b.readOnly {
		return ErrReadOnly
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.state)
}

func (s *Store) direct() binding { return binding{store: s} }

// Lots repositorio de lotes fuera de transacción.
func (s *Store) Lots() *LotRepo { return &LotRepo{b: s.direct()} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{b: s.direct()} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{b: s.direct()} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{b: s.direct()} }

// Settings repositorio de configuración de costeo.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{b: s.direct()} }

// TxRunner ejecuta callbacks sobre una copia del estado y la publica si no hubo error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner para el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run toma el lock exclusivo, ejecuta fn sobre una copia y hace Commit (swap) o Rollback (descarta).
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.state.clone()
	b := binding{store: r.store, tx: work}
	if err := fn(&LotRepo{b: b}, &ProductRepo{b: b}, &SaleRepo{b: b}); err != nil {
		return err
	}
	r.store.state = work
	return nil
}

// RunReadOnly ejecuta fn con lock compartido sobre el estado confirmado; las escrituras fallan.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b := binding{store: r.store, tx: r.store.state, readOnly: true}
	return fn(&LotRepo{b: b}, &ProductRepo{b: b})
}
