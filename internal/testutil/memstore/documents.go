package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var (
	_ repository.AuditRepository     = (*AuditRepo)(nil)
	_ repository.SaleRepository      = (*SaleRepo)(nil)
	_ repository.ReceivingRepository = (*ReceivingRepo)(nil)
	_ repository.CustomerRepository  = (*CustomerRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
)

// ── Audit ───────────────────────────────────────────────────────────────────

// AuditRepo implementación en memoria de repository.AuditRepository.
type AuditRepo struct{ base }

func (r *AuditRepo) Create(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	setRow(r.base, r.s.audit, l.ID, clone(l))
	return nil
}

func (r *AuditRepo) ListByEntity(_ context.Context, entityType, entityID string, limit int) ([]*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var keys []string
	for id, l := range r.s.audit {
		if l.EntityType == entityType && l.EntityID == entityID {
			keys = append(keys, id)
		}
	}
	keys = r.s.sortedByInsertion(keys)
	out := make([]*entity.AuditLog, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		out = append(out, clone(r.s.audit[keys[i]]))
	}
	return page(out, limit, 0), nil
}

// ── Sales ───────────────────────────────────────────────────────────────────

// SaleRepo implementación en memoria de repository.SaleRepository.
type SaleRepo struct{ base }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.sales {
		if o.SaleNumber == sale.SaleNumber {
			return domain.NewConflictError("Sale number already exists")
		}
	}
	now := time.Now()
	if sale.SaleDate.IsZero() {
		sale.SaleDate = now
	}
	sale.CreatedAt, sale.UpdatedAt = now, now
	row := clone(sale)
	row.Items = nil
	setRow(r.base, r.s.sales, sale.ID, row)
	return nil
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[item.SaleID]; !ok {
		return domain.ErrNotFound
	}
	setRow(r.base, r.s.saleItems, item.ID, clone(item))
	return nil
}

// withItems requiere s.mu tomado.
func (r *SaleRepo) withItems(s *entity.Sale) *entity.Sale {
	out := clone(s)
	if b, ok := r.s.branches[s.BranchID]; ok {
		out.BranchName = b.Name
	}
	if s.CustomerID != nil {
		if c, ok := r.s.customers[*s.CustomerID]; ok {
			out.CustomerName = c.Name
		}
	}
	if u, ok := r.s.users[s.CashierID]; ok {
		out.CashierName = u.FullName
	}
	out.Items = nil
	for _, it := range r.s.saleItems {
		if it.SaleID == s.ID {
			out.Items = append(out.Items, clone(it))
		}
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ProductName < out.Items[j].ProductName })
	return out
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(s), nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	r.lockRow("sale:" + id)
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) filtered(f repository.SaleFilter) []*entity.Sale {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if (f.BranchID != "" && s.BranchID != f.BranchID) ||
			(f.CashierID != "" && s.CashierID != f.CashierID) ||
			(f.Status != "" && s.Status != f.Status) ||
			(f.From != nil && s.SaleDate.Before(*f.From)) ||
			(f.To != nil && !s.SaleDate.Before(*f.To)) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := page(r.filtered(f), f.Limit, f.Offset)
	out := make([]*entity.Sale, 0, len(list))
	for _, s := range list {
		out = append(out, r.withItems(s))
	}
	return out, nil
}

func (r *SaleRepo) Count(_ context.Context, f repository.SaleFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *SaleRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(cur)
	next.Status = status
	next.UpdatedAt = time.Now()
	setRow(r.base, r.s.sales, id, next)
	return nil
}

// ── Receivings ──────────────────────────────────────────────────────────────

// ReceivingRepo implementación en memoria de repository.ReceivingRepository.
type ReceivingRepo struct{ base }

func (r *ReceivingRepo) Create(_ context.Context, rc *entity.Receiving) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.receivings {
		if o.ReceivingNumber == rc.ReceivingNumber {
			return domain.NewConflictError("Receiving number already exists")
		}
	}
	now := time.Now()
	if rc.ReceivedAt.IsZero() {
		rc.ReceivedAt = now
	}
	rc.CreatedAt = now
	row := clone(rc)
	row.Items = nil
	setRow(r.base, r.s.receivings, rc.ID, row)
	return nil
}

func (r *ReceivingRepo) CreateItem(_ context.Context, item *entity.ReceivingItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.receivings[item.ReceivingID]; !ok {
		return domain.ErrNotFound
	}
	setRow(r.base, r.s.recItems, item.ID, clone(item))
	return nil
}

// withItems requiere s.mu tomado.
func (r *ReceivingRepo) withItems(rc *entity.Receiving) *entity.Receiving {
	out := clone(rc)
	if b, ok := r.s.branches[rc.BranchID]; ok {
		out.BranchName = b.Name
	}
	var keys []string
	for id, it := range r.s.recItems {
		if it.ReceivingID == rc.ID {
			keys = append(keys, id)
		}
	}
	out.Items = nil
	for _, id := range r.s.sortedByInsertion(keys) {
		out.Items = append(out.Items, clone(r.s.recItems[id]))
	}
	return out
}

func (r *ReceivingRepo) GetByID(_ context.Context, id string) (*entity.Receiving, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.receivings[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(rc), nil
}

func (r *ReceivingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error) {
	r.lockRow("receiving:" + id)
	return r.GetByID(ctx, id)
}

func (r *ReceivingRepo) List(_ context.Context, branchID string, limit, offset int) ([]*entity.Receiving, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Receiving
	for _, rc := range r.s.receivings {
		if branchID == "" || rc.BranchID == branchID {
			out = append(out, r.withItems(rc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return page(out, limit, offset), nil
}

// ── Customers ───────────────────────────────────────────────────────────────

// CustomerRepo implementación en memoria de repository.CustomerRepository.
type CustomerRepo struct{ base }

func (r *CustomerRepo) conflict(c *entity.Customer) bool {
	for id, o := range r.s.customers {
		if id != c.ID && o.DeletedAt == nil && o.Code == c.Code {
			return true
		}
	}
	return false
}

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(c) {
		return domain.NewConflictError("Customer code already exists")
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	setRow(r.base, r.s.customers, c.ID, clone(c))
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	return clone(c), nil
}

func (r *CustomerRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search = strings.ToLower(search)
	var out []*entity.Customer
	for _, c := range r.s.customers {
		if c.DeletedAt != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Code), search) && !strings.Contains(c.Phone, search) {
			continue
		}
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.customers[c.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if r.conflict(c) {
		return domain.NewConflictError("Customer code already exists")
	}
	next := clone(c)
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now()
	setRow(r.base, r.s.customers, c.ID, next)
	return nil
}

func (r *CustomerRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.customers[id]
	if !ok || cur.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	next := clone(cur)
	next.DeletedAt = &now
	setRow(r.base, r.s.customers, id, next)
	return true, nil
}

// ── Categories ──────────────────────────────────────────────────────────────

// CategoryRepo implementación en memoria de repository.CategoryRepository.
type CategoryRepo struct{ base }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	setRow(r.base, r.s.categories, c.ID, clone(c))
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.categories[id]), nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(c)
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now()
	setRow(r.base, r.s.categories, c.ID, next)
	return nil
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.DeletedAt == nil && p.CategoryID != nil && *p.CategoryID == id {
			return domain.NewConflictError("Category is in use")
		}
	}
	delRow(r.base, r.s.categories, id)
	return nil
}

// ── Users ───────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de repository.UserRepository.
type UserRepo struct{ base }

func (r *UserRepo) conflict(u *entity.User) bool {
	for id, o := range r.s.users {
		if id != u.ID && o.DeletedAt == nil &&
			(strings.EqualFold(o.Username, u.Username) || strings.EqualFold(o.Email, u.Email)) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(u) {
		return domain.ErrEmailAlreadyExists
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	setRow(r.base, r.s.users, u.ID, clone(u))
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return clone(u), nil
}

func (r *UserRepo) FindByLogin(_ context.Context, login string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.DeletedAt == nil && (strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)) {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrUserNotFound
	}
	if r.conflict(u) {
		return domain.ErrEmailAlreadyExists
	}
	next := clone(u)
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now()
	setRow(r.base, r.s.users, u.ID, next)
	return nil
}

func (r *UserRepo) TouchLastLogin(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	now := time.Now()
	next := clone(cur)
	next.LastLoginAt = &now
	setRow(r.base, r.s.users, id, next)
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.DeletedAt == nil {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), nil
}

func (r *UserRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok || cur.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	next := clone(cur)
	next.DeletedAt = &now
	setRow(r.base, r.s.users, id, next)
	return true, nil
}
