package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var (
	_ repository.SupplierRepository       = (*SupplierRepo)(nil)
	_ repository.PurchaseReturnRepository = (*PurchaseReturnRepo)(nil)
	_ repository.SalesReturnRepository    = (*SalesReturnRepo)(nil)
)

// ── Suppliers ───────────────────────────────────────────────────────────────

// SupplierRepo implementación en memoria de repository.SupplierRepository.
type SupplierRepo struct{ base }

func (r *SupplierRepo) conflict(s *entity.Supplier) bool {
	for id, o := range r.s.suppliers {
		if id != s.ID && o.DeletedAt == nil && o.Code == s.Code {
			return true
		}
	}
	return false
}

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(s) {
		return domain.NewConflictError("Supplier code already exists")
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	setRow(r.base, r.s.suppliers, s.ID, clone(s))
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.suppliers[id]
	if !ok || s.DeletedAt != nil {
		return nil, nil
	}
	return clone(s), nil
}

func (r *SupplierRepo) filtered(f repository.SupplierFilter) []*entity.Supplier {
	search := strings.ToLower(f.Search)
	var out []*entity.Supplier
	for _, s := range r.s.suppliers {
		if s.DeletedAt != nil || (f.IsActive != nil && s.IsActive != *f.IsActive) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Code), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) && !strings.Contains(s.Phone, search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *SupplierRepo) List(_ context.Context, f repository.SupplierFilter) ([]*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := page(r.filtered(f), f.Limit, f.Offset)
	out := make([]*entity.Supplier, 0, len(list))
	for _, s := range list {
		out = append(out, clone(s))
	}
	return out, nil
}

func (r *SupplierRepo) Count(_ context.Context, f repository.SupplierFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[s.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if r.conflict(s) {
		return domain.NewConflictError("Supplier code already exists")
	}
	next := clone(s)
	next.CurrentBalance = cur.CurrentBalance
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now()
	setRow(r.base, r.s.suppliers, s.ID, next)
	return nil
}

func (r *SupplierRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[id]
	if !ok || cur.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	next := clone(cur)
	next.Code = fmt.Sprintf("%s_deleted_%d", cur.Code, now.Unix())
	next.IsActive = false
	next.DeletedAt = &now
	setRow(r.base, r.s.suppliers, id, next)
	return true, nil
}

func (r *SupplierRepo) LastCode(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last := ""
	for _, s := range r.s.suppliers {
		code, _, _ := strings.Cut(s.Code, "_deleted_")
		if strings.HasPrefix(code, prefix) && code > last {
			last = code
		}
	}
	return last, nil
}

// ── Devoluciones ────────────────────────────────────────────────────────────

func matchesReturn(f repository.ReturnFilter, branchID, docID, status string) bool {
	return (f.BranchID == "" || branchID == f.BranchID) &&
		(f.DocumentID == "" || docID == f.DocumentID) &&
		(f.Status == "" || status == f.Status)
}

// PurchaseReturnRepo implementación en memoria de repository.PurchaseReturnRepository.
type PurchaseReturnRepo struct{ base }

func (r *PurchaseReturnRepo) Create(_ context.Context, pr *entity.PurchaseReturn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.purReturns {
		if o.ReturnNumber == pr.ReturnNumber {
			return domain.NewConflictError("Return number already exists")
		}
	}
	if _, ok := r.s.receivings[pr.ReceivingID]; !ok {
		return domain.ErrNotFound
	}
	row := clone(pr)
	row.Items = nil
	setRow(r.base, r.s.purReturns, pr.ID, row)
	return nil
}

func (r *PurchaseReturnRepo) CreateItem(_ context.Context, item *entity.PurchaseReturnItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.purReturns[item.ReturnID]; !ok {
		return domain.ErrNotFound
	}
	setRow(r.base, r.s.purRetItem, item.ID, clone(item))
	return nil
}

// withItems requiere s.mu tomado.
func (r *PurchaseReturnRepo) withItems(pr *entity.PurchaseReturn) *entity.PurchaseReturn {
	out := clone(pr)
	if b, ok := r.s.branches[pr.BranchID]; ok {
		out.BranchName = b.Name
	}
	if rc, ok := r.s.receivings[pr.ReceivingID]; ok {
		out.ReceivingNumber = rc.ReceivingNumber
		out.SupplierName = rc.SupplierName
	}
	if pr.SupplierID != nil {
		if s, ok := r.s.suppliers[*pr.SupplierID]; ok {
			out.SupplierName = s.Name
		}
	}
	var keys []string
	for id, it := range r.s.purRetItem {
		if it.ReturnID == pr.ID {
			keys = append(keys, id)
		}
	}
	out.Items = nil
	for _, id := range r.s.sortedByInsertion(keys) {
		out.Items = append(out.Items, clone(r.s.purRetItem[id]))
	}
	return out
}

func (r *PurchaseReturnRepo) GetByID(_ context.Context, id string) (*entity.PurchaseReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.purReturns[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(pr), nil
}

func (r *PurchaseReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	r.lockRow("purchase_return:" + id)
	return r.GetByID(ctx, id)
}

func (r *PurchaseReturnRepo) filtered(f repository.ReturnFilter) []*entity.PurchaseReturn {
	var out []*entity.PurchaseReturn
	for _, pr := range r.s.purReturns {
		if matchesReturn(f, pr.BranchID, pr.ReceivingID, pr.Status) {
			out = append(out, pr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReturnDate.After(out[j].ReturnDate) })
	return out
}

func (r *PurchaseReturnRepo) List(_ context.Context, f repository.ReturnFilter) ([]*entity.PurchaseReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := page(r.filtered(f), f.Limit, f.Offset)
	out := make([]*entity.PurchaseReturn, 0, len(list))
	for _, pr := range list {
		row := r.withItems(pr)
		row.Items = nil
		out = append(out, row)
	}
	return out, nil
}

func (r *PurchaseReturnRepo) Count(_ context.Context, f repository.ReturnFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *PurchaseReturnRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.purReturns[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(cur)
	next.Status = status
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.purReturns, id, next)
	return nil
}

func (r *PurchaseReturnRepo) ReturnedByItem(_ context.Context, receivingID string) (map[string]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, it := range r.s.purRetItem {
		pr, ok := r.s.purReturns[it.ReturnID]
		if !ok || pr.ReceivingID != receivingID || pr.Status == entity.PurchaseReturnCancelled {
			continue
		}
		out[it.ReceivingItemID] = out[it.ReceivingItemID].Add(it.Quantity)
	}
	return out, nil
}

// SalesReturnRepo implementación en memoria de repository.SalesReturnRepository.
type SalesReturnRepo struct{ base }

func (r *SalesReturnRepo) Create(_ context.Context, sr *entity.SalesReturn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.salReturns {
		if o.ReturnNumber == sr.ReturnNumber {
			return domain.NewConflictError("Return number already exists")
		}
	}
	if _, ok := r.s.sales[sr.SaleID]; !ok {
		return domain.ErrNotFound
	}
	row := clone(sr)
	row.Items = nil
	setRow(r.base, r.s.salReturns, sr.ID, row)
	return nil
}

func (r *SalesReturnRepo) CreateItem(_ context.Context, item *entity.SalesReturnItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.salReturns[item.ReturnID]; !ok {
		return domain.ErrNotFound
	}
	setRow(r.base, r.s.salRetItem, item.ID, clone(item))
	return nil
}

// withItems requiere s.mu tomado.
func (r *SalesReturnRepo) withItems(sr *entity.SalesReturn) *entity.SalesReturn {
	out := clone(sr)
	if b, ok := r.s.branches[sr.BranchID]; ok {
		out.BranchName = b.Name
	}
	if s, ok := r.s.sales[sr.SaleID]; ok {
		out.SaleNumber = s.SaleNumber
	}
	out.Items = nil
	for _, it := range r.s.salRetItem {
		if it.ReturnID == sr.ID {
			out.Items = append(out.Items, clone(it))
		}
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ProductName < out.Items[j].ProductName })
	return out
}

func (r *SalesReturnRepo) GetByID(_ context.Context, id string) (*entity.SalesReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.salReturns[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(sr), nil
}

func (r *SalesReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesReturn, error) {
	r.lockRow("sales_return:" + id)
	return r.GetByID(ctx, id)
}

func (r *SalesReturnRepo) filtered(f repository.ReturnFilter) []*entity.SalesReturn {
	var out []*entity.SalesReturn
	for _, sr := range r.s.salReturns {
		if matchesReturn(f, sr.BranchID, sr.SaleID, sr.Status) {
			out = append(out, sr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReturnDate.After(out[j].ReturnDate) })
	return out
}

func (r *SalesReturnRepo) List(_ context.Context, f repository.ReturnFilter) ([]*entity.SalesReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := page(r.filtered(f), f.Limit, f.Offset)
	out := make([]*entity.SalesReturn, 0, len(list))
	for _, sr := range list {
		row := r.withItems(sr)
		row.Items = nil
		out = append(out, row)
	}
	return out, nil
}

func (r *SalesReturnRepo) Count(_ context.Context, f repository.ReturnFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *SalesReturnRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.salReturns[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(cur)
	next.Status = status
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.salReturns, id, next)
	return nil
}

func (r *SalesReturnRepo) ReturnedByItem(_ context.Context, saleID string) (map[string]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, it := range r.s.salRetItem {
		sr, ok := r.s.salReturns[it.ReturnID]
		if !ok || sr.SaleID != saleID || sr.Status == entity.SalesReturnCancelled {
			continue
		}
		out[it.SaleItemID] = out[it.SaleItemID].Add(it.Quantity)
	}
	return out, nil
}
