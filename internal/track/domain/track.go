package domain

import (
	"strings"
	"time"

	sharedBus "github.com/davicafu/metamood/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
)

// TrackRecord es la entidad de almacenamiento de una pista.
// Las métricas de audio son opcionales: nil significa "sin dato".
type TrackRecord struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ReleaseDate      time.Time `json:"release_date"`
	Popularity       *int      `json:"popularity,omitempty"`
	Acousticness     *float64  `json:"acousticness,omitempty"`
	Danceability     *float64  `json:"danceability,omitempty"`
	Energy           *float64  `json:"energy,omitempty"`
	Liveness         *float64  `json:"liveness,omitempty"`
	Loudness         *float64  `json:"loudness,omitempty"`
	Speechiness      *float64  `json:"speechiness,omitempty"`
	Tempo            *float64  `json:"tempo,omitempty"`
	Instrumentalness *float64  `json:"instrumentalness,omitempty"`
	Valence          *float64  `json:"valence,omitempty"`
}

func (t *TrackRecord) PartitionKey() string {
	return t.ID.String()
}

// Validate comprueba lo mínimo que el almacenamiento garantiza.
func (t *TrackRecord) Validate() error {
	if t.ID == uuid.Nil || strings.TrimSpace(t.Name) == "" {
		return ErrInvalidTrack
	}
	return nil
}

// Verificación estática para asegurar que TrackRecord implementa la interfaz
var _ sharedBus.Keyer = (*TrackRecord)(nil)

// TrackView es la proyección pública de una pista.
// ID no se serializa: solo sirve como último criterio de orden.
type TrackView struct {
	ID               uuid.UUID `json:"-"`
	Name             string    `json:"name"`
	ReleaseDate      time.Time `json:"releaseDate"`
	Popularity       *int      `json:"popularity"`
	Acousticness     *float64  `json:"acousticness"`
	Danceability     *float64  `json:"danceability"`
	Energy           *float64  `json:"energy"`
	Liveness         *float64  `json:"liveness"`
	Loudness         *float64  `json:"loudness"`
	Speechiness      *float64  `json:"speechiness"`
	Tempo            *float64  `json:"tempo"`
	Instrumentalness *float64  `json:"instrumentalness"`
	Valence          *float64  `json:"valence"`
}

// Project copia campo a campo un registro a su vista pública.
// Los punteros se copian en profundidad para que la vista no comparta memoria con el registro.
func Project(r TrackRecord) TrackView {
	return TrackView{
		ID:               r.ID,
		Name:             r.Name,
		ReleaseDate:      r.ReleaseDate,
		Popularity:       copyPtr(r.Popularity),
		Acousticness:     copyPtr(r.Acousticness),
		Danceability:     copyPtr(r.Danceability),
		Energy:           copyPtr(r.Energy),
		Liveness:         copyPtr(r.Liveness),
		Loudness:         copyPtr(r.Loudness),
		Speechiness:      copyPtr(r.Speechiness),
		Tempo:            copyPtr(r.Tempo),
		Instrumentalness: copyPtr(r.Instrumentalness),
		Valence:          copyPtr(r.Valence),
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ---------------- Acceso por columna ----------------

type viewAccessor func(TrackView) (FieldValue, bool)

func numeric(get func(TrackView) *float64) viewAccessor {
	return func(v TrackView) (FieldValue, bool) {
		p := get(v)
		if p == nil {
			return FieldValue{}, false
		}
		return NumberValue(*p), true
	}
}

// Tabla fija columna -> accesor; cubre las columnas del registro de pistas más el ID.
var trackAccessors = map[string]viewAccessor{
	ColumnID:          func(v TrackView) (FieldValue, bool) { return TextValue(v.ID.String()), true },
	ColumnName:        func(v TrackView) (FieldValue, bool) { return TextValue(v.Name), true },
	ColumnReleaseDate: func(v TrackView) (FieldValue, bool) { return DateValue(v.ReleaseDate), true },
	ColumnPopularity: func(v TrackView) (FieldValue, bool) {
		if v.Popularity == nil {
			return FieldValue{}, false
		}
		return NumberValue(float64(*v.Popularity)), true
	},
	ColumnAcousticness:     numeric(func(v TrackView) *float64 { return v.Acousticness }),
	ColumnDanceability:     numeric(func(v TrackView) *float64 { return v.Danceability }),
	ColumnEnergy:           numeric(func(v TrackView) *float64 { return v.Energy }),
	ColumnInstrumentalness: numeric(func(v TrackView) *float64 { return v.Instrumentalness }),
	ColumnLiveness:         numeric(func(v TrackView) *float64 { return v.Liveness }),
	ColumnLoudness:         numeric(func(v TrackView) *float64 { return v.Loudness }),
	ColumnSpeechiness:      numeric(func(v TrackView) *float64 { return v.Speechiness }),
	ColumnTempo:            numeric(func(v TrackView) *float64 { return v.Tempo }),
	ColumnValence:          numeric(func(v TrackView) *float64 { return v.Valence }),
}

// Value devuelve el valor de la vista para una columna; false si es nulo o desconocida.
func (v TrackView) Value(column string) (FieldValue, bool) {
	get, ok := trackAccessors[column]
	if !ok {
		return FieldValue{}, false
	}
	return get(v)
}
