package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

func TestCustomerCRUD(t *testing.T) {
	uc := billing.NewCustomerUseCase(memstore.New().Customers())
	ctx := context.Background()

	ana, err := uc.Create(ctx, dto.CustomerRequest{Code: "C-1", Name: " Ana ", IsMember: true})
	require.NoError(t, err)
	assert.Equal(t, "Ana", ana.Name)
	_, err = uc.Create(ctx, dto.CustomerRequest{Code: "C-2", Name: "Bruno", Phone: "555-0101"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CustomerRequest{Code: "C-1", Name: "Otra"})
	assert.EqualError(t, err, "Customer code already exists")
	_, err = uc.Create(ctx, dto.CustomerRequest{Code: "", Name: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	found, err := uc.List(ctx, "bru", dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C-2", found[0].Code)

	updated, err := uc.Update(ctx, ana.ID, dto.CustomerRequest{Code: "C-1", Name: "Ana María"})
	require.NoError(t, err)
	assert.False(t, updated.IsMember)

	require.NoError(t, uc.Delete(ctx, ana.ID))
	_, err = uc.Get(ctx, ana.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(uc.Delete(ctx, ana.ID), domain.ErrNotFound))
}
