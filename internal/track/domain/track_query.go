package domain

import (
	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	"github.com/davicafu/metamood/internal/shared/infra/platform/query"
)

// TrackQuery describe una lectura aún no ejecutada: condiciones, orden y ventana.
// Es un valor inmutable; cada método devuelve una copia nueva.
type TrackQuery struct {
	conditions []sharedDomain.Criterion
	sorts      []query.Sort
	window     *query.OffsetPagination
}

// NewTrackQuery devuelve la descripción de "todas las pistas".
func NewTrackQuery() TrackQuery {
	return TrackQuery{}
}

// Where añade condiciones (AND) a las existentes.
func (q TrackQuery) Where(c sharedDomain.Criteria) TrackQuery {
	if c == nil {
		return q
	}
	out := q.clone()
	out.conditions = append(out.conditions, c.ToConditions()...)
	return out
}

// OrderBy añade claves de orden tras las existentes.
func (q TrackQuery) OrderBy(sorts ...query.Sort) TrackQuery {
	out := q.clone()
	out.sorts = append(out.sorts, sorts...)
	return out
}

// Page fija la ventana, reemplazando la anterior.
func (q TrackQuery) Page(p query.OffsetPagination) TrackQuery {
	out := q.clone()
	out.window = &p
	return out
}

func (q TrackQuery) Conditions() []sharedDomain.Criterion {
	return append([]sharedDomain.Criterion(nil), q.conditions...)
}

func (q TrackQuery) Sorts() []query.Sort {
	return append([]query.Sort(nil), q.sorts...)
}

// Window devuelve la ventana; false si la consulta no está paginada.
func (q TrackQuery) Window() (query.OffsetPagination, bool) {
	if q.window == nil {
		return query.OffsetPagination{}, false
	}
	return *q.window, true
}

func (q TrackQuery) clone() TrackQuery {
	out := TrackQuery{
		conditions: q.Conditions(),
		sorts:      q.Sorts(),
	}
	if q.window != nil {
		w := *q.window
		out.window = &w
	}
	return out
}
