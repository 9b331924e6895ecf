// Package memstore implementa los repositorios en memoria para los tests de casos de uso.
// Respeta el contrato transaccional de Postgres que usan los casos de uso: Run deshace
// todas las escrituras si fn falla, y GetForUpdate bloquea la fila hasta el fin de la transacción.
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store estado compartido de todos los repositorios.
type Store struct {
	mu sync.Mutex

	products   map[string]*entity.Product
	units      map[string]*entity.ProductUnit
	prices     map[string]*entity.ProductBranchPrice // product|branch|unit
	stocks     map[string]*entity.ProductStock       // product|branch
	branches   map[string]*entity.Branch
	customers  map[string]*entity.Customer
	categories map[string]*entity.Category
	users      map[string]*entity.User
	audit      map[string]*entity.AuditLog
	sales      map[string]*entity.Sale
	saleItems  map[string]*entity.SaleItem
	receivings map[string]*entity.Receiving
	recItems   map[string]*entity.ReceivingItem
	suppliers  map[string]*entity.Supplier
	purReturns map[string]*entity.PurchaseReturn
	purRetItem map[string]*entity.PurchaseReturnItem
	salReturns map[string]*entity.SalesReturn
	salRetItem map[string]*entity.SalesReturnItem

	// orden de inserción para listados estables.
	order map[string]int64
	seq   int64

	locksMu  sync.Mutex
	rowLocks map[string]*sync.Mutex

	commits   atomic.Int64
	rollbacks atomic.Int64
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products:   map[string]*entity.Product{},
		units:      map[string]*entity.ProductUnit{},
		prices:     map[string]*entity.ProductBranchPrice{},
		stocks:     map[string]*entity.ProductStock{},
		branches:   map[string]*entity.Branch{},
		customers:  map[string]*entity.Customer{},
		categories: map[string]*entity.Category{},
		users:      map[string]*entity.User{},
		audit:      map[string]*entity.AuditLog{},
		sales:      map[string]*entity.Sale{},
		saleItems:  map[string]*entity.SaleItem{},
		receivings: map[string]*entity.Receiving{},
		recItems:   map[string]*entity.ReceivingItem{},
		suppliers:  map[string]*entity.Supplier{},
		purReturns: map[string]*entity.PurchaseReturn{},
		purRetItem: map[string]*entity.PurchaseReturnItem{},
		salReturns: map[string]*entity.SalesReturn{},
		salRetItem: map[string]*entity.SalesReturnItem{},
		order:      map[string]int64{},
		rowLocks:   map[string]*sync.Mutex{},
	}
}

// txState escrituras a deshacer y filas bloqueadas por una transacción.
type txState struct {
	undo  []func()
	locks []*sync.Mutex
	held  map[string]bool
}

type base struct {
	s  *Store
	tx *txState
}

// Run implementa repository.TxRunner.
func (s *Store) Run(_ context.Context, fn func(repos repository.TxRepos) error) error {
	tx := &txState{held: map[string]bool{}}
	err := fn(s.repos(tx))
	if err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		s.rollbacks.Add(1)
	} else {
		s.commits.Add(1)
	}
	for i := len(tx.locks) - 1; i >= 0; i-- {
		tx.locks[i].Unlock()
	}
	return err
}

// Commits transacciones confirmadas.
func (s *Store) Commits() int64 { return s.commits.Load() }

// Rollbacks transacciones revertidas.
func (s *Store) Rollbacks() int64 { return s.rollbacks.Load() }

func (s *Store) repos(tx *txState) repository.TxRepos {
	b := base{s: s, tx: tx}
	return repository.TxRepos{
		Products:   &ProductRepo{b},
		Stocks:     &StockRepo{b},
		Units:      &UnitRepo{b},
		Prices:     &PriceRepo{b},
		Branches:   &BranchRepo{b},
		Audit:      &AuditRepo{b},
		Sales:      &SaleRepo{b},
		Receivings: &ReceivingRepo{b},

		Suppliers:       &SupplierRepo{b},
		PurchaseReturns: &PurchaseReturnRepo{b},
		SalesReturns:    &SalesReturnRepo{b},
	}
}

// Repositorios fuera de transacción.

func (s *Store) Products() *ProductRepo     { return &ProductRepo{base{s: s}} }
func (s *Store) Stocks() *StockRepo         { return &StockRepo{base{s: s}} }
func (s *Store) Units() *UnitRepo           { return &UnitRepo{base{s: s}} }
func (s *Store) Prices() *PriceRepo         { return &PriceRepo{base{s: s}} }
func (s *Store) Branches() *BranchRepo      { return &BranchRepo{base{s: s}} }
func (s *Store) Audit() *AuditRepo          { return &AuditRepo{base{s: s}} }
func (s *Store) Sales() *SaleRepo           { return &SaleRepo{base{s: s}} }
func (s *Store) Receivings() *ReceivingRepo { return &ReceivingRepo{base{s: s}} }
func (s *Store) Customers() *CustomerRepo   { return &CustomerRepo{base{s: s}} }
func (s *Store) Categories() *CategoryRepo  { return &CategoryRepo{base{s: s}} }
func (s *Store) Users() *UserRepo           { return &UserRepo{base{s: s}} }
func (s *Store) Suppliers() *SupplierRepo   { return &SupplierRepo{base{s: s}} }

func (s *Store) PurchaseReturns() *PurchaseReturnRepo { return &PurchaseReturnRepo{base{s: s}} }
func (s *Store) SalesReturns() *SalesReturnRepo       { return &SalesReturnRepo{base{s: s}} }

// lockRow bloquea la fila key hasta el fin de la transacción; reentrante dentro de la misma.
func (b base) lockRow(key string) {
	if b.tx == nil || b.tx.held[key] {
		return
	}
	b.s.locksMu.Lock()
	m, ok := b.s.rowLocks[key]
	if !ok {
		m = &sync.Mutex{}
		b.s.rowLocks[key] = m
	}
	b.s.locksMu.Unlock()

	m.Lock()
	b.tx.held[key] = true
	b.tx.locks = append(b.tx.locks, m)
}

// setRow escribe m[key] registrando cómo deshacerlo. Requiere s.mu tomado.
func setRow[T any](b base, m map[string]*T, key string, v *T) {
	old, had := m[key]
	m[key] = v
	if _, ok := b.s.order[key]; !ok {
		b.s.seq++
		b.s.order[key] = b.s.seq
	}
	if b.tx != nil {
		b.tx.undo = append(b.tx.undo, func() {
			if had {
				m[key] = old
			} else {
				delete(m, key)
			}
		})
	}
}

// delRow borra m[key] registrando cómo deshacerlo. Requiere s.mu tomado.
func delRow[T any](b base, m map[string]*T, key string) {
	old, had := m[key]
	if !had {
		return
	}
	delete(m, key)
	if b.tx != nil {
		b.tx.undo = append(b.tx.undo, func() { m[key] = old })
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// sortedByInsertion ordena keys por orden de inserción. Requiere s.mu tomado.
func (s *Store) sortedByInsertion(keys []string) []string {
	sort.Slice(keys, func(i, j int) bool { return s.order[keys[i]] < s.order[keys[j]] })
	return keys
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
