package memory

import (
	"fmt"
	"sort"

	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
)

// Run materializa q sobre views en proceso: filtra, ordena (estable) y pagina.
// No modifica views.
func Run(views []trackDomain.TrackView, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	conds := q.Conditions()
	out := make([]trackDomain.TrackView, 0, len(views))
	for _, v := range views {
		ok, err := matches(v, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}

	sorts := q.Sorts()
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range sorts {
			c, err := compareColumn(out[i], out[j], s.Field)
			if err != nil {
				sortErr = err
				return false
			}
			if s.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if w, ok := q.Window(); ok {
		if w.Offset >= len(out) {
			return []trackDomain.TrackView{}, nil
		}
		end := len(out)
		if w.Limit >= 0 && w.Limit < end-w.Offset {
			end = w.Offset + w.Limit
		}
		out = out[w.Offset:end]
	}
	return out, nil
}

func matches(v trackDomain.TrackView, conds []sharedDomain.Criterion) (bool, error) {
	for _, c := range conds {
		if !knownColumn(c.Field) {
			return false, fmt.Errorf("unsupported column %q", c.Field)
		}
		got, present := v.Value(c.Field)
		if !present {
			// Los nulos nunca cumplen un filtro
			return false, nil
		}
		want, ok := got.Kind.ValueOf(c.Value)
		if !ok {
			return false, fmt.Errorf("value %v does not match %s column %q", c.Value, got.Kind, c.Field)
		}
		res := got.Kind.Compare(got, want)

		var pass bool
		switch c.Op {
		case sharedDomain.OpEq:
			pass = res == 0
		case sharedDomain.OpGt:
			pass = res > 0
		case sharedDomain.OpGte:
			pass = res >= 0
		case sharedDomain.OpLt:
			pass = res < 0
		case sharedDomain.OpLte:
			pass = res <= 0
		default:
			return false, fmt.Errorf("unsupported operator %q", c.Op)
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// compareColumn ordena nulos primero en ascendente. Además de las columnas del
// registro acepta el ID, que cierra el orden.
func compareColumn(a, b trackDomain.TrackView, column string) (int, error) {
	if !knownColumn(column) && column != trackDomain.ColumnID {
		return 0, fmt.Errorf("unsupported sort column %q", column)
	}
	va, okA := a.Value(column)
	vb, okB := b.Value(column)
	switch {
	case !okA && !okB:
		return 0, nil
	case !okA:
		return -1, nil
	case !okB:
		return 1, nil
	}
	return va.Kind.Compare(va, vb), nil
}

var columns = func() map[string]bool {
	m := map[string]bool{}
	for _, f := range trackDomain.NewTrackFieldRegistry().Fields() {
		m[f.Column] = true
	}
	return m
}()

func knownColumn(column string) bool {
	return columns[column]
}
