package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/pkg/validator"
)

type item struct {
	ProductID string  `json:"productId" validate:"required,uuid_string"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

type request struct {
	BranchID string `json:"branchId" validate:"required"`
	Items    []item `json:"items" validate:"required,min=1,dive"`
}

func TestValidateStruct_Valido(t *testing.T) {
	req := request{BranchID: "b1", Items: []item{{ProductID: "0b6f1c5e-7a7e-4c55-9d53-1f1f1f1f1f1f", Quantity: 1}}}
	assert.Nil(t, validator.ValidateStruct(req))
}

func TestValidateStruct_UsaNombresJSON(t *testing.T) {
	req := request{Items: []item{{ProductID: "no-uuid", Quantity: 0}}}

	errs := validator.ValidateStruct(req)
	require.Len(t, errs, 3)

	details := validator.Details(errs)
	assert.Equal(t, "required", details["branchId"])
	assert.Equal(t, "uuid_string", details["items[0].productId"])
	assert.Equal(t, "gt", details["items[0].quantity"])
}

func TestDetails_Vacio(t *testing.T) {
	assert.Nil(t, validator.Details(nil))
}
