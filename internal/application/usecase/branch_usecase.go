package usecase

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

// BranchUseCase casos de uso CRUD para sucursales.
type BranchUseCase struct {
	txRunner repository.TxRunner
	repo     repository.BranchRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(txRunner repository.TxRunner, repo repository.BranchRepository) *BranchUseCase {
	return &BranchUseCase{txRunner: txRunner, repo: repo}
}

// Create crea una sucursal y, en la misma transacción, su fila de stock en cero para cada producto vivo.
func (uc *BranchUseCase) Create(ctx context.Context, in dto.BranchRequest) (*dto.BranchResponse, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("Branch code and name are required", nil)
	}
	now := time.Now()
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(in.Code),
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Type:      in.Type,
		IsActive:  boolOr(in.IsActive, true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if branch.Type == "" {
		branch.Type = "store"
	}
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Branches.Create(ctx, branch); err != nil {
			return err
		}
		_, err := repos.Stocks.SeedForBranch(ctx, branch.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// GetByID obtiene una sucursal por ID.
func (uc *BranchUseCase) GetByID(ctx context.Context, id string) (*dto.BranchResponse, error) {
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.NewNotFoundError("Branch not found")
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// Update reemplaza los datos de la sucursal.
func (uc *BranchUseCase) Update(ctx context.Context, id string, in dto.BranchRequest) (*dto.BranchResponse, error) {
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.NewNotFoundError("Branch not found")
	}
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("Branch code and name are required", nil)
	}
	branch.Code = strings.TrimSpace(in.Code)
	branch.Name = strings.TrimSpace(in.Name)
	branch.Address = in.Address
	branch.Phone = in.Phone
	branch.Email = in.Email
	if in.Type != "" {
		branch.Type = in.Type
	}
	if in.IsActive != nil {
		branch.IsActive = *in.IsActive
	}
	branch.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// List lista sucursales con paginación.
func (uc *BranchUseCase) List(ctx context.Context, page dto.PageQuery) ([]dto.BranchResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.FromBranch(b))
	}
	return items, nil
}

// Delete soft-delete de la sucursal.
func (uc *BranchUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Branch not found")
	}
	return nil
}
