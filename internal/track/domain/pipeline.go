package domain

import "github.com/davicafu/metamood/internal/shared/infra/platform/query"

// tieBreakColumn es la clave secundaria de la petición; uniqueColumn cierra el
// orden cuando hay nombres repetidos.
const (
	tieBreakColumn = ColumnName
	uniqueColumn   = ColumnID
)

// Apply compone filtro, orden y página sobre source, siempre en ese orden.
// No muta source ni hace I/O: el repositorio materializa el resultado.
func Apply(spec QuerySpec, source TrackQuery) TrackQuery {
	sorts := []query.Sort{{Field: spec.SortField.Column}}
	if spec.SortField.Column != tieBreakColumn {
		sorts = append(sorts, query.Sort{Field: tieBreakColumn})
	}
	sorts = append(sorts, source.sorts...)

	hasUnique := false
	for _, s := range sorts {
		if s.Field == uniqueColumn {
			hasUnique = true
		}
	}
	if !hasUnique {
		sorts = append(sorts, query.Sort{Field: uniqueColumn})
	}

	q := source.Where(spec.Criteria())
	q = TrackQuery{conditions: q.conditions, sorts: sorts, window: q.window}
	return q.Page(spec.Pagination())
}
