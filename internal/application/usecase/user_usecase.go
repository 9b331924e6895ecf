package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	branches repository.BranchRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, branches repository.BranchRepository) *UserUseCase {
	return &UserUseCase{repo: repo, branches: branches}
}

// Create hashea la contraseña con bcrypt y persiste. Username o email repetido → ErrEmailAlreadyExists.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !entity.ValidRole(in.Role) {
		return nil, domain.NewValidationError("Invalid role", map[string]any{"role": in.Role})
	}
	branchID := blankToNil(in.BranchID)
	if err := uc.checkBranch(ctx, branchID); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         in.Role,
		BranchID:     branchID,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.FullName == "" {
		user.FullName = user.Username
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.FromUser(user)
	return &out, nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageQuery) ([]dto.UserResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.FromUser(u))
	}
	return out, nil
}

// Update actualización parcial; una nueva contraseña se vuelve a hashear.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.NewValidationError("Invalid role", map[string]any{"role": *in.Role})
		}
		user.Role = *in.Role
	}
	if in.BranchID != nil {
		user.BranchID = blankToNil(in.BranchID)
		if err := uc.checkBranch(ctx, user.BranchID); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Delete soft-delete del usuario; nadie puede borrarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.NewValidationError("You cannot delete your own account", nil)
	}
	ok, err := uc.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (uc *UserUseCase) checkBranch(ctx context.Context, branchID *string) error {
	if branchID == nil {
		return nil
	}
	b, err := uc.branches.GetByID(ctx, *branchID)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.NewNotFoundError("Branch not found")
	}
	return nil
}
