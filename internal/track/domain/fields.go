package domain

import (
	"fmt"
	"strings"
)

// Columnas de almacenamiento de una pista.
const (
	ColumnName             = "name"
	ColumnReleaseDate      = "release_date"
	ColumnPopularity       = "popularity"
	ColumnAcousticness     = "acousticness"
	ColumnDanceability     = "danceability"
	ColumnEnergy           = "energy"
	ColumnInstrumentalness = "instrumentalness"
	ColumnLiveness         = "liveness"
	ColumnLoudness         = "loudness"
	ColumnSpeechiness      = "speechiness"
	ColumnTempo            = "tempo"
	ColumnValence          = "valence"

	// ColumnID no es un campo consultable; solo desempata el orden.
	ColumnID = "id"
)

// FieldDescriptor describe un campo elegible para filtrar u ordenar.
type FieldDescriptor struct {
	Name         string // clave pública, insensible a mayúsculas
	Column       string // columna en el almacenamiento
	Kind         FieldKind
	RangeCapable bool // admite <campo>_min / <campo>_max
}

// FieldRegistry es el catálogo cerrado de campos. Es de solo lectura tras
// construirse, por lo que puede compartirse entre peticiones sin bloqueo.
type FieldRegistry struct {
	fields      []FieldDescriptor
	byName      map[string]int
	byColumn    map[string]int
	defaultSort int
}

var reservedParams = map[string]bool{"pagesize": true, "pagenumber": true, "sortby": true}

// NewFieldRegistry valida y construye un registro. El orden de fields es el
// orden en que el parser recorre el registro.
func NewFieldRegistry(defaultSort string, fields ...FieldDescriptor) (*FieldRegistry, error) {
	r := &FieldRegistry{
		fields:   make([]FieldDescriptor, 0, len(fields)),
		byName:   make(map[string]int, len(fields)),
		byColumn: make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		key := strings.ToLower(f.Name)
		switch {
		case key == "" || f.Column == "":
			return nil, fmt.Errorf("field registry: name and column are required")
		case reservedParams[key]:
			return nil, fmt.Errorf("field registry: %q is a reserved parameter", f.Name)
		case strings.HasSuffix(key, suffixMin) || strings.HasSuffix(key, suffixMax):
			return nil, fmt.Errorf("field registry: %q clashes with range suffixes", f.Name)
		case f.Kind < KindNumeric || f.Kind > KindText:
			return nil, fmt.Errorf("field registry: %q has unknown kind", f.Name)
		case f.RangeCapable && f.Kind == KindText:
			return nil, fmt.Errorf("field registry: text field %q cannot be range capable", f.Name)
		}
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("field registry: duplicate field %q", f.Name)
		}
		if _, dup := r.byColumn[f.Column]; dup {
			return nil, fmt.Errorf("field registry: duplicate column %q", f.Column)
		}

		r.byName[key] = len(r.fields)
		r.byColumn[f.Column] = len(r.fields)
		r.fields = append(r.fields, f)
	}

	idx, ok := r.byName[strings.ToLower(defaultSort)]
	if !ok {
		return nil, fmt.Errorf("field registry: default sort field %q is not registered", defaultSort)
	}
	r.defaultSort = idx

	if _, ok := r.byColumn[tieBreakColumn]; !ok {
		return nil, fmt.Errorf("field registry: tie-break column %q is not registered", tieBreakColumn)
	}

	return r, nil
}

// NewTrackFieldRegistry construye el registro de campos de pistas.
// Se llama una vez al arrancar y se pasa explícitamente a quien lo necesite.
func NewTrackFieldRegistry() *FieldRegistry {
	r, err := NewFieldRegistry("name",
		FieldDescriptor{Name: "name", Column: ColumnName, Kind: KindText},
		FieldDescriptor{Name: "releaseDate", Column: ColumnReleaseDate, Kind: KindDate, RangeCapable: true},
		FieldDescriptor{Name: "popularity", Column: ColumnPopularity, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "acousticness", Column: ColumnAcousticness, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "danceability", Column: ColumnDanceability, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "energy", Column: ColumnEnergy, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "instrumentalness", Column: ColumnInstrumentalness, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "liveness", Column: ColumnLiveness, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "loudness", Column: ColumnLoudness, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "speechiness", Column: ColumnSpeechiness, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "tempo", Column: ColumnTempo, Kind: KindNumeric, RangeCapable: true},
		FieldDescriptor{Name: "valence", Column: ColumnValence, Kind: KindNumeric, RangeCapable: true},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup busca un campo por nombre sin distinguir mayúsculas.
func (r *FieldRegistry) Lookup(name string) (FieldDescriptor, bool) {
	idx, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.fields[idx], true
}

// ByColumn busca un campo por su columna de almacenamiento.
func (r *FieldRegistry) ByColumn(column string) (FieldDescriptor, bool) {
	idx, ok := r.byColumn[column]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.fields[idx], true
}

// Fields devuelve una copia de los campos en orden de registro.
func (r *FieldRegistry) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(r.fields))
	copy(out, r.fields)
	return out
}

// DefaultSort es el campo de orden cuando la petición no trae sortBy.
func (r *FieldRegistry) DefaultSort() FieldDescriptor {
	return r.fields[r.defaultSort]
}
