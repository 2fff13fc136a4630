package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ---------- Errores de dominio ----------
var (
	ErrInvalidQuery  = errors.New("invalid query")
	ErrBackend       = errors.New("storage backend failure")
	ErrTrackNotFound = errors.New("track not found")
	ErrInvalidTrack  = errors.New("invalid track")
	ErrUnknownTable  = errors.New("unknown table")
)

// ValidationError es siempre culpa del cliente; Msg puede mostrarse tal cual.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return ErrInvalidQuery }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// BackendFailure envuelve un error del almacenamiento para que errors.Is(err, ErrBackend) funcione.
func BackendFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBackend, op, err)
}

// SpotifyTracksTable es la única tabla expuesta por el endpoint de conteo.
const SpotifyTracksTable = "spotify-tracks"

// ---------- Interfaces (Ports) ----------

// TrackRepository materializa descripciones de consulta y acepta la ingesta.
type TrackRepository interface {
	// Materialize ejecuta q: filtra, ordena y pagina, en ese orden.
	Materialize(ctx context.Context, q TrackQuery) ([]TrackView, error)

	// UpsertBatch inserta o reemplaza pistas por ID.
	UpsertBatch(ctx context.Context, tracks []TrackRecord) error

	// Debe devolver ErrTrackNotFound si no existe.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// TrackStatsRepository sirve las lecturas agregadas (conteo y medias).
type TrackStatsRepository interface {
	Count(ctx context.Context) (int64, error)
	Averages(ctx context.Context) (MetricAverages, error)
}

// TrackAnalyticsRepository es un espejo analítico alimentado por la ingesta.
type TrackAnalyticsRepository interface {
	TrackStatsRepository
	LogBatch(ctx context.Context, tracks []TrackRecord) error
	LogDeletion(ctx context.Context, id uuid.UUID) error
}

// MetricAverages son las medias de las métricas en [0,1]; loudness y tempo quedan fuera.
type MetricAverages struct {
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Valence          float64 `json:"valence"`
}

// AverageColumns es el orden de columnas usado por los repositorios SQL.
var AverageColumns = []string{
	ColumnAcousticness,
	ColumnDanceability,
	ColumnEnergy,
	ColumnInstrumentalness,
	ColumnLiveness,
	ColumnSpeechiness,
	ColumnValence,
}

// Targets devuelve punteros a los campos en el orden de AverageColumns.
func (m *MetricAverages) Targets() []*float64 {
	return []*float64{
		&m.Acousticness,
		&m.Danceability,
		&m.Energy,
		&m.Instrumentalness,
		&m.Liveness,
		&m.Speechiness,
		&m.Valence,
	}
}
