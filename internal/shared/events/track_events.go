package events

import (
	"time"

	"github.com/google/uuid"
)

// Contratos de integración para la ingesta del catálogo de pistas.
// Se definen planos para intercambio entre contextos.
type TrackUpserted struct {
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

type TrackDeleted struct {
	ID uuid.UUID `json:"id"`
}
