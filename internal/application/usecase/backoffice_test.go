package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/usecase"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

func strPtr(s string) *string { return &s }

func TestBranchCreate_SiembraStock(t *testing.T) {
	s := memstore.New()
	p, _ := s.AddProduct("SKU-1", "Arroz", "1", "2")
	uc := usecase.NewBranchUseCase(s, s.Branches())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.BranchRequest{Code: " B9 ", Name: "Sur"})
	require.NoError(t, err)
	assert.Equal(t, "B9", out.Code)

	rows, err := s.Stocks().ListByProduct(ctx, p.ID, out.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = uc.Create(ctx, dto.BranchRequest{Code: "B9", Name: "Otra"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.EqualError(t, err, "Branch code already exists")

	require.NoError(t, uc.Delete(ctx, out.ID))
	_, err = uc.GetByID(ctx, out.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(uc.Delete(ctx, out.ID), domain.ErrNotFound))
}

func TestUserCRUD(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	uc := usecase.NewUserUseCase(s.Users(), s.Branches())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateUserRequest{
		Username: "caja1", Email: " Caja1@POS.local ", Password: "secreto123", Role: "cashier", BranchID: &b.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "caja1@pos.local", out.Email)
	assert.Equal(t, "caja1", out.FullName)
	assert.Equal(t, "active", out.Status)

	stored, err := s.Users().GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "caja1", Email: "x@pos.local", Password: "secreto123", Role: "cashier"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "x", Email: "y@pos.local", Password: "secreto123", Role: "root"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "z", Email: "z@pos.local", Password: "secreto123", Role: "cashier", BranchID: strPtr("nope")})
	assert.EqualError(t, err, "Branch not found")

	updated, err := uc.Update(ctx, out.ID, dto.UpdateUserRequest{Role: strPtr("manager"), Status: strPtr("inactive")})
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)
	assert.Equal(t, "inactive", updated.Status)

	list, err := uc.List(ctx, dto.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.EqualError(t, uc.Delete(ctx, out.ID, out.ID), "You cannot delete your own account")
	require.NoError(t, uc.Delete(ctx, "admin-id", out.ID))
	_, err = uc.GetByID(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCategoryDelete_EnUso(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewCategoryUseCase(s.Categories())
	ctx := context.Background()

	parent, err := uc.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	child, err := uc.Create(ctx, dto.CategoryRequest{Name: "Aguas", ParentID: &parent.ID})
	require.NoError(t, err)

	_, err = uc.Update(ctx, child.ID, dto.CategoryRequest{Name: "Aguas", ParentID: &child.ID})
	assert.EqualError(t, err, "Category cannot be its own parent")

	_, err = uc.Create(ctx, dto.CategoryRequest{Name: "X", ParentID: strPtr("nope")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	p, _ := s.AddProduct("SKU-1", "Agua", "1", "2")
	p.CategoryID = &child.ID
	require.NoError(t, s.Products().Update(ctx, p))

	err = uc.Delete(ctx, child.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.EqualError(t, err, "Category is in use")

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.True(t, errors.Is(uc.Delete(ctx, "nope"), domain.ErrNotFound))
}
