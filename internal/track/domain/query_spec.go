package domain

import (
	"strconv"

	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	"github.com/davicafu/metamood/internal/shared/infra/platform/query"
)

// FilterCriterion es el filtro validado de un campo: Exact, o Min y/o Max.
type FilterCriterion struct {
	Field FieldDescriptor
	Min   *FieldValue
	Max   *FieldValue
	Exact *FieldValue
}

// ToConditions traduce el filtro a condiciones neutrales sobre la columna.
func (c FilterCriterion) ToConditions() []sharedDomain.Criterion {
	var conds []sharedDomain.Criterion
	if c.Exact != nil {
		conds = append(conds, sharedDomain.Criterion{Field: c.Field.Column, Op: sharedDomain.OpEq, Value: c.Exact.Native()})
	}
	if c.Min != nil {
		conds = append(conds, sharedDomain.Criterion{Field: c.Field.Column, Op: sharedDomain.OpGte, Value: c.Min.Native()})
	}
	if c.Max != nil {
		conds = append(conds, sharedDomain.Criterion{Field: c.Field.Column, Op: sharedDomain.OpLte, Value: c.Max.Native()})
	}
	return conds
}

// QuerySpec es la petición validada. Se construye con ParseQuerySpec y no se modifica.
type QuerySpec struct {
	Filters    []FilterCriterion
	SortField  FieldDescriptor
	PageSize   int
	PageNumber int
}

// Criteria combina todos los filtros con AND.
func (s QuerySpec) Criteria() sharedDomain.Criteria {
	crits := make([]sharedDomain.Criteria, 0, len(s.Filters))
	for _, f := range s.Filters {
		crits = append(crits, f)
	}
	return sharedDomain.And(crits...)
}

// Pagination devuelve la ventana [(n-1)*s, n*s).
func (s QuerySpec) Pagination() query.OffsetPagination {
	return query.OffsetPagination{
		Limit:  s.PageSize,
		Offset: (s.PageNumber - 1) * s.PageSize,
	}
}

// Params re-serializa la petición en un mapa de parámetros equivalente.
func (s QuerySpec) Params() map[string]string {
	out := map[string]string{
		ParamPageSize:   strconv.Itoa(s.PageSize),
		ParamPageNumber: strconv.Itoa(s.PageNumber),
		ParamSortBy:     s.SortField.Name,
	}
	for _, f := range s.Filters {
		if f.Exact != nil {
			out[f.Field.Name] = f.Exact.String()
		}
		if f.Min != nil {
			out[f.Field.Name+suffixMin] = f.Min.String()
		}
		if f.Max != nil {
			out[f.Field.Name+suffixMax] = f.Max.String()
		}
	}
	return out
}
