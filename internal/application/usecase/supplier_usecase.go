package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

const supplierCodePrefix = "SUPP"

// SupplierUseCase casos de uso para proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un proveedor; el código duplicado lo rechaza el repositorio con 409.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s := &entity.Supplier{ID: uuid.New().String(), IsActive: true}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	out := dto.FromSupplier(s)
	return &out, nil
}

// Get proveedor por ID.
func (uc *SupplierUseCase) Get(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromSupplier(s)
	return &out, nil
}

// List proveedores paginados, con búsqueda por nombre, código, email o teléfono.
func (uc *SupplierUseCase) List(ctx context.Context, q dto.SupplierQuery) ([]dto.SupplierResponse, *dto.Pagination, error) {
	q.Normalize()
	f := repository.SupplierFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset(),
	}
	if q.IsActive != "" {
		active, err := strconv.ParseBool(q.IsActive)
		if err != nil {
			return nil, nil, domain.NewValidationError("isActive must be true or false", nil)
		}
		f.IsActive = &active
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSupplier(s))
	}
	return out, dto.NewPagination(q.PageQuery, total), nil
}

// Update reemplaza los datos del proveedor. El saldo actual no se toca.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	out := dto.FromSupplier(s)
	return &out, nil
}

// Delete soft-delete del proveedor; su código queda libre para otro.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Supplier not found")
	}
	return nil
}

// GenerateCode siguiente código SUPPYYMM#### del mes de now.
func (uc *SupplierUseCase) GenerateCode(ctx context.Context, now time.Time) (*dto.SupplierCodeResponse, error) {
	prefix := supplierCodePrefix + now.Format("0601")
	last, err := uc.repo.LastCode(ctx, prefix)
	if err != nil {
		return nil, err
	}
	next := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			next = n + 1
		}
	}
	return &dto.SupplierCodeResponse{Code: fmt.Sprintf("%s%04d", prefix, next)}, nil
}

func (uc *SupplierUseCase) find(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFoundError("Supplier not found")
	}
	return s, nil
}

func applySupplier(s *entity.Supplier, in dto.SupplierRequest) error {
	code, name := strings.TrimSpace(in.Code), strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return domain.NewValidationError("Supplier code and name are required", nil)
	}
	if strings.Contains(code, "_deleted_") {
		return domain.NewValidationError("Supplier code cannot contain _deleted_", nil)
	}
	if in.PaymentTerms < 0 {
		return domain.NewValidationError("Payment terms cannot be negative", nil)
	}
	limit := decimal.Zero
	if in.CreditLimit != nil {
		if in.CreditLimit.IsNegative() {
			return domain.NewValidationError("Credit limit cannot be negative", nil)
		}
		limit = in.CreditLimit.Round(2)
	}
	s.Code = code
	s.Name = name
	s.Email = strings.TrimSpace(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Address = in.Address
	s.City = in.City
	s.TaxID = in.TaxID
	s.PaymentTerms = in.PaymentTerms
	s.CreditLimit = limit
	s.IsActive = boolOr(in.IsActive, s.IsActive)
	s.Notes = in.Notes
	return nil
}
