package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes del POS.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente; el código duplicado lo rechaza el repositorio con 409.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("Customer code and name are required", nil)
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(in.Code),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		IsMember:  in.IsMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	out := dto.FromCustomer(customer)
	return &out, nil
}

// Get cliente por ID.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFoundError("Customer not found")
	}
	out := dto.FromCustomer(c)
	return &out, nil
}

// List lista clientes, opcionalmente filtrando por código o nombre.
func (uc *CustomerUseCase) List(ctx context.Context, search string, page dto.PageQuery) ([]dto.CustomerResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, search, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.FromCustomer(c))
	}
	return out, nil
}

// Update reemplaza los datos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFoundError("Customer not found")
	}
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("Customer code and name are required", nil)
	}
	c.Code = strings.TrimSpace(in.Code)
	c.Name = strings.TrimSpace(in.Name)
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.IsMember = in.IsMember
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	out := dto.FromCustomer(c)
	return &out, nil
}

// Delete soft-delete del cliente.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Customer not found")
	}
	return nil
}
