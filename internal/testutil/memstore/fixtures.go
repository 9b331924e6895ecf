package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// Helpers para sembrar datos en tests; entran por los repositorios para respetar sus reglas.

// AddBranch crea una sucursal activa.
func (s *Store) AddBranch(code, name string) *entity.Branch {
	b := &entity.Branch{ID: uuid.New().String(), Code: code, Name: name, Type: "store", IsActive: true}
	if err := s.Branches().Create(context.Background(), b); err != nil {
		panic(err)
	}
	return b
}

// AddProduct crea un producto con su unidad base y, para cada sucursal activa, stock en cero
// y precio igual al de referencia.
func (s *Store) AddProduct(sku, name, cost, selling string) (*entity.Product, *entity.ProductUnit) {
	ctx := context.Background()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         name,
		Unit:         entity.DefaultUnit,
		CostPrice:    decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(selling),
		IsActive:     true,
		IsTrackable:  true,
	}
	if err := s.Products().Create(ctx, p); err != nil {
		panic(err)
	}
	u := &entity.ProductUnit{
		ID:              uuid.New().String(),
		ProductID:       p.ID,
		UnitName:        p.Unit,
		ConversionValue: decimal.NewFromInt(1),
		IsBaseUnit:      true,
		IsPurchasable:   true,
		IsSellable:      true,
	}
	if err := s.Units().Create(ctx, u); err != nil {
		panic(err)
	}
	if _, err := s.Stocks().SeedForProduct(ctx, p.ID); err != nil {
		panic(err)
	}
	if _, err := s.Prices().SeedForUnit(ctx, p.ID, u.ID, p.CostPrice, p.SellingPrice); err != nil {
		panic(err)
	}
	return p, u
}

// AddUnit agrega una unidad alterna con su conversión.
func (s *Store) AddUnit(productID, name, conversion string) *entity.ProductUnit {
	u := &entity.ProductUnit{
		ID:              uuid.New().String(),
		ProductID:       productID,
		UnitName:        name,
		ConversionValue: decimal.RequireFromString(conversion),
		IsPurchasable:   true,
		IsSellable:      true,
		SortOrder:       1,
	}
	if err := s.Units().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

// SetStock fija la cantidad de (producto, sucursal) sin pasar por el libro.
func (s *Store) SetStock(productID, branchID, qty string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stockKey(productID, branchID)
	st := clone(s.stocks[key])
	if st == nil {
		st = &entity.ProductStock{ProductID: productID, BranchID: branchID}
	}
	st.Quantity = decimal.RequireFromString(qty)
	setRow(base{s: s}, s.stocks, key, st)
}

// StockOf cantidad actual de (producto, sucursal); cero si no hay fila.
func (s *Store) StockOf(productID, branchID string) decimal.Decimal {
	st, _ := s.Stocks().Get(context.Background(), productID, branchID)
	if st == nil {
		return decimal.Zero
	}
	return st.Quantity
}
