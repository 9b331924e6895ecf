package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse describe un campo rechazado por las reglas `validate`.
type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

var validate = validator.New()

func init() {
	// Los nombres de campo salen del tag json para que el cliente los reconozca.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("uuid_string", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
}

// ValidateStruct aplica los tags `validate` de data; nil si todo es válido.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var out []*ErrorResponse
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
	}
	for _, fe := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: trimRoot(fe.Namespace()),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return out
}

// Details convierte los errores a un mapa campo -> regla, útil como details del envelope.
func Details(errs []*ErrorResponse) map[string]any {
	if len(errs) == 0 {
		return nil
	}
	m := make(map[string]any, len(errs))
	for _, e := range errs {
		m[e.FailedField] = e.Tag
	}
	return m
}

// trimRoot quita el nombre del struct raíz: "CreateSaleRequest.items[0].quantity" -> "items[0].quantity".
func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
