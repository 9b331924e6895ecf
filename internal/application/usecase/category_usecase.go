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

// CategoryUseCase casos de uso para categorías de productos.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría; el padre, si viene, debe existir.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("Category name is required", nil)
	}
	parentID := blankToNil(in.ParentID)
	if err := uc.checkParent(ctx, "", parentID); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		ParentID:    parentID,
		Name:        name,
		Description: in.Description,
		IsActive:    boolOr(in.IsActive, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.FromCategory(c)
	return &out, nil
}

// List todas las categorías.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.FromCategory(c))
	}
	return out, nil
}

// Update reemplaza los datos de la categoría; una categoría no puede ser su propio padre.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFoundError("Category not found")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("Category name is required", nil)
	}
	parentID := blankToNil(in.ParentID)
	if err := uc.checkParent(ctx, id, parentID); err != nil {
		return nil, err
	}
	c.Name = name
	c.ParentID = parentID
	c.Description = in.Description
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	out := dto.FromCategory(c)
	return &out, nil
}

// Delete elimina la categoría; si tiene productos el repositorio responde 409.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NewNotFoundError("Category not found")
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *CategoryUseCase) checkParent(ctx context.Context, id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return domain.NewValidationError("Category cannot be its own parent", nil)
	}
	parent, err := uc.repo.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return domain.NewNotFoundError("Parent category not found")
	}
	return nil
}
