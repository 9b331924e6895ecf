package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.UnitRepository    = (*UnitRepo)(nil)
	_ repository.PriceRepository   = (*PriceRepo)(nil)
	_ repository.StockRepository   = (*StockRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
)

// ── Products ────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct{ base }

func (r *ProductRepo) conflict(p *entity.Product) bool {
	for id, o := range r.s.products {
		if id == p.ID || o.DeletedAt != nil {
			continue
		}
		if o.SKU == p.SKU || (p.Barcode != nil && o.Barcode != nil && *o.Barcode == *p.Barcode) {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(p) {
		return domain.NewConflictError("Product with this SKU or barcode already exists")
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	setRow(r.base, r.s.products, p.ID, clone(p))
	return nil
}

func (r *ProductRepo) live(id string) *entity.Product {
	p, ok := r.s.products[id]
	if !ok || p.DeletedAt != nil {
		return nil
	}
	return p
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.live(id)), nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.DeletedAt == nil && p.SKU == sku {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.DeletedAt == nil && p.Barcode != nil && *p.Barcode == barcode {
			return clone(p), nil
		}
	}
	for _, u := range r.s.units {
		if u.DeletedAt == nil && u.Barcode != nil && *u.Barcode == barcode {
			return clone(r.live(u.ProductID)), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) filtered(f repository.ProductFilter) []*entity.ProductListItem {
	search := strings.ToLower(f.Search)
	var out []*entity.ProductListItem
	for _, p := range r.s.products {
		if p.DeletedAt != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			(p.Barcode == nil || !strings.Contains(strings.ToLower(*p.Barcode), search)) {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		it := &entity.ProductListItem{Product: *p, BranchID: f.BranchID}
		for _, st := range r.s.stocks {
			if st.ProductID == p.ID && (f.BranchID == "" || st.BranchID == f.BranchID) {
				it.StockQuantity = it.StockQuantity.Add(st.Quantity)
				it.AvailableQuantity = it.AvailableQuantity.Add(st.AvailableQuantity())
			}
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.ProductListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.filtered(f), f.Limit, f.Offset), nil
}

func (r *ProductRepo) Count(_ context.Context, f repository.ProductFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *ProductRepo) Search(_ context.Context, q string, limit int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	active := true
	var out []*entity.Product
	for _, it := range r.filtered(repository.ProductFilter{Search: q, IsActive: &active}) {
		p := it.Product
		out = append(out, &p)
	}
	return page(out, limit, 0), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, branchID string) ([]*entity.ProductListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProductListItem
	for _, st := range r.s.stocks {
		p := r.live(st.ProductID)
		if p == nil || !p.IsTrackable || (branchID != "" && st.BranchID != branchID) {
			continue
		}
		if st.AvailableQuantity().GreaterThan(p.ReorderPoint) {
			continue
		}
		out = append(out, &entity.ProductListItem{
			Product:           *p,
			BranchID:          st.BranchID,
			StockQuantity:     st.Quantity,
			AvailableQuantity: st.AvailableQuantity(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvailableQuantity.LessThan(out[j].AvailableQuantity) })
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.live(p.ID)
	if cur == nil {
		return domain.ErrNotFound
	}
	if r.conflict(p) {
		return domain.NewConflictError("Product with this SKU or barcode already exists")
	}
	next := clone(p)
	next.CostPrice = cur.CostPrice
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.products, p.ID, next)
	return nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.live(productID)
	if cur == nil {
		return domain.ErrNotFound
	}
	next := clone(cur)
	next.CostPrice = cost
	setRow(r.base, r.s.products, productID, next)
	return nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.live(id)
	if cur == nil {
		return false, nil
	}
	now := time.Now()
	next := clone(cur)
	next.DeletedAt = &now
	setRow(r.base, r.s.products, id, next)
	for uid, u := range r.s.units {
		if u.ProductID == id && u.DeletedAt == nil {
			nu := clone(u)
			nu.DeletedAt = &now
			setRow(r.base, r.s.units, uid, nu)
		}
	}
	for key, pr := range r.s.prices {
		if pr.ProductID == id {
			delRow(r.base, r.s.prices, key)
		}
	}
	return true, nil
}

// ── Units ───────────────────────────────────────────────────────────────────

// UnitRepo implementación en memoria de repository.UnitRepository.
type UnitRepo struct{ base }

func (r *UnitRepo) conflict(u *entity.ProductUnit) error {
	for id, o := range r.s.units {
		if id == u.ID || o.DeletedAt != nil || o.ProductID != u.ProductID {
			continue
		}
		if u.IsBaseUnit && o.IsBaseUnit {
			return domain.NewConflictError("Product already has a base unit. Please update existing base unit instead.")
		}
		if o.UnitName == u.UnitName {
			return domain.NewConflictError("Unit already exists for this product")
		}
	}
	return nil
}

func (r *UnitRepo) Create(_ context.Context, u *entity.ProductUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	setRow(r.base, r.s.units, u.ID, clone(u))
	return nil
}

func (r *UnitRepo) GetByID(_ context.Context, productID, unitID string) (*entity.ProductUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.units[unitID]
	if !ok || u.DeletedAt != nil || u.ProductID != productID {
		return nil, nil
	}
	return clone(u), nil
}

func (r *UnitRepo) GetBase(_ context.Context, productID string) (*entity.ProductUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.units {
		if u.ProductID == productID && u.IsBaseUnit && u.DeletedAt == nil {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *UnitRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ProductUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProductUnit
	for _, u := range r.s.units {
		if u.ProductID == productID && u.DeletedAt == nil {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsBaseUnit != out[j].IsBaseUnit {
			return out[i].IsBaseUnit
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ConversionValue.LessThan(out[j].ConversionValue)
	})
	return out, nil
}

func (r *UnitRepo) Update(_ context.Context, u *entity.ProductUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.units[u.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	next := clone(u)
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.units, u.ID, next)
	return nil
}

func (r *UnitRepo) SoftDelete(_ context.Context, productID, unitID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.units[unitID]
	if !ok || cur.DeletedAt != nil || cur.ProductID != productID {
		return domain.ErrNotFound
	}
	now := time.Now()
	next := clone(cur)
	next.DeletedAt = &now
	setRow(r.base, r.s.units, unitID, next)
	for key, pr := range r.s.prices {
		if pr.ProductUnitID == unitID {
			delRow(r.base, r.s.prices, key)
		}
	}
	return nil
}

// ── Prices ──────────────────────────────────────────────────────────────────

// PriceRepo implementación en memoria de repository.PriceRepository.
type PriceRepo struct{ base }

func priceKey(productID, branchID, unitID string) string {
	return productID + "|" + branchID + "|" + unitID
}

func (r *PriceRepo) Upsert(_ context.Context, p *entity.ProductBranchPrice) (*entity.ProductBranchPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// la columna id es UUID: Postgres rechaza '' con 22P02.
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("upsert price: invalid id %q: %w", p.ID, err)
	}
	key := priceKey(p.ProductID, p.BranchID, p.ProductUnitID)
	next := clone(p)
	now := time.Now()
	if cur, ok := r.s.prices[key]; ok {
		next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	} else {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	setRow(r.base, r.s.prices, key, next)
	return clone(next), nil
}

func (r *PriceRepo) SeedForUnit(_ context.Context, productID, unitID string, cost, selling decimal.Decimal) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	now := time.Now()
	for _, branchID := range activeBranchIDs(r.s) {
		key := priceKey(productID, branchID, unitID)
		if _, ok := r.s.prices[key]; ok {
			continue
		}
		setRow(r.base, r.s.prices, key, &entity.ProductBranchPrice{
			ID: uuid.New().String(), ProductID: productID, BranchID: branchID, ProductUnitID: unitID,
			CostPrice: cost, SellingPrice: selling, CreatedAt: now, UpdatedAt: now,
		})
		n++
	}
	return n, nil
}

func (r *PriceRepo) Get(_ context.Context, productID, branchID, unitID string) (*entity.ProductBranchPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.prices[priceKey(productID, branchID, unitID)]), nil
}

func (r *PriceRepo) ListByProduct(_ context.Context, productID string, f repository.PriceFilter) ([]*entity.ProductBranchPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProductBranchPrice
	for _, p := range r.s.prices {
		if p.ProductID != productID || (f.UnitID != "" && p.ProductUnitID != f.UnitID) ||
			(f.BranchID != "" && p.BranchID != f.BranchID) {
			continue
		}
		row := clone(p)
		if b, ok := r.s.branches[p.BranchID]; ok {
			row.BranchCode, row.BranchName = b.Code, b.Name
		}
		if u, ok := r.s.units[p.ProductUnitID]; ok {
			row.UnitName, row.ConversionValue = u.UnitName, u.ConversionValue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchCode != out[j].BranchCode {
			return out[i].BranchCode < out[j].BranchCode
		}
		return out[i].ConversionValue.LessThan(out[j].ConversionValue)
	})
	return out, nil
}

// ── Stocks ──────────────────────────────────────────────────────────────────

// StockRepo implementación en memoria de repository.StockRepository.
type StockRepo struct{ base }

func stockKey(productID, branchID string) string { return productID + "|" + branchID }

func (r *StockRepo) Get(_ context.Context, productID, branchID string) (*entity.ProductStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.stocks[stockKey(productID, branchID)]; ok {
		return clone(st), nil
	}
	return &entity.ProductStock{ProductID: productID, BranchID: branchID}, nil
}

func (r *StockRepo) GetForUpdate(_ context.Context, productID, branchID string) (*entity.ProductStock, error) {
	key := stockKey(productID, branchID)
	r.lockRow("stock:" + key)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocks[key]
	if !ok {
		st = &entity.ProductStock{ProductID: productID, BranchID: branchID, UpdatedAt: time.Now()}
		setRow(r.base, r.s.stocks, key, st)
	}
	return clone(st), nil
}

func (r *StockRepo) Save(_ context.Context, stock *entity.ProductStock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stockKey(stock.ProductID, stock.BranchID)
	cur, ok := r.s.stocks[key]
	if !ok {
		return domain.ErrNotFound
	}
	// Equivale al CHECK (quantity >= 0) de la tabla.
	if stock.Quantity.IsNegative() {
		return domain.NewValidationError("quantity must be >= 0", nil)
	}
	next := clone(cur)
	next.Quantity = stock.Quantity
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.stocks, key, next)
	stock.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *StockRepo) ListByProduct(_ context.Context, productID, branchID string) ([]*entity.ProductStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProductStock
	for _, st := range r.s.stocks {
		if st.ProductID != productID || (branchID != "" && st.BranchID != branchID) {
			continue
		}
		row := clone(st)
		if b, ok := r.s.branches[st.BranchID]; ok {
			row.BranchName = b.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BranchID < out[j].BranchID })
	return out, nil
}

func (r *StockRepo) SeedForProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, branchID := range activeBranchIDs(r.s) {
		key := stockKey(productID, branchID)
		if _, ok := r.s.stocks[key]; ok {
			continue
		}
		setRow(r.base, r.s.stocks, key, &entity.ProductStock{ProductID: productID, BranchID: branchID, UpdatedAt: time.Now()})
		n++
	}
	return n, nil
}

func (r *StockRepo) SeedForBranch(_ context.Context, branchID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, p := range r.s.products {
		if p.DeletedAt != nil {
			continue
		}
		key := stockKey(id, branchID)
		if _, ok := r.s.stocks[key]; ok {
			continue
		}
		setRow(r.base, r.s.stocks, key, &entity.ProductStock{ProductID: id, BranchID: branchID, UpdatedAt: time.Now()})
		n++
	}
	return n, nil
}

// ── Branches ────────────────────────────────────────────────────────────────

// BranchRepo implementación en memoria de repository.BranchRepository.
type BranchRepo struct{ base }

// activeBranchIDs requiere s.mu tomado.
func activeBranchIDs(s *Store) []string {
	var ids []string
	for id, b := range s.branches {
		if b.IsActive && b.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return s.branches[ids[i]].Code < s.branches[ids[j]].Code })
	return ids
}

func (r *BranchRepo) conflict(b *entity.Branch) bool {
	for id, o := range r.s.branches {
		if id != b.ID && o.DeletedAt == nil && o.Code == b.Code {
			return true
		}
	}
	return false
}

func (r *BranchRepo) Create(_ context.Context, b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(b) {
		return domain.NewConflictError("Branch code already exists")
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	setRow(r.base, r.s.branches, b.ID, clone(b))
	return nil
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.branches[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	return clone(b), nil
}

func (r *BranchRepo) List(_ context.Context, limit, offset int) ([]*entity.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Branch
	for _, b := range r.s.branches {
		if b.DeletedAt == nil {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

func (r *BranchRepo) ListActiveIDs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return activeBranchIDs(r.s), nil
}

func (r *BranchRepo) Update(_ context.Context, b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.branches[b.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if r.conflict(b) {
		return domain.NewConflictError("Branch code already exists")
	}
	next := clone(b)
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now()
	setRow(r.base, r.s.branches, b.ID, next)
	return nil
}

func (r *BranchRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.branches[id]
	if !ok || cur.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	next := clone(cur)
	next.DeletedAt = &now
	setRow(r.base, r.s.branches, id, next)
	return true, nil
}
