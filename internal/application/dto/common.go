// Package dto define los contratos JSON de entrada y salida de la API.
package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// Cantidades como número JSON (10, 7.5); el dinero viaja como string con 2 decimales.
	decimal.MarshalJSONWithoutQuotes = true
}

// Envelope cuerpo de toda respuesta HTTP.
type Envelope struct {
	Success    bool           `json:"success"`
	Data       any            `json:"data,omitempty"`
	Message    string         `json:"message,omitempty"`
	Error      *ErrorResponse `json:"error,omitempty"`
	Details    any            `json:"details,omitempty"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageQuery paginación por página (query ?page=&limit=).
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize aplica valores por defecto y el tope de limit.
func (p *PageQuery) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset desplazamiento SQL de la página actual.
func (p PageQuery) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination calcula totalPages.
func NewPagination(p PageQuery, total int) *Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// RawValue decodifica un valor JSON crudo conservando la precisión de los números:
// null o ausente -> nil, número -> json.Number, string -> string, otro -> su valor Go.
func RawValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
