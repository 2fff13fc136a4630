package application

import (
	"context"
	"errors"
	"net/url"
	"time"

	// --- Importaciones del dominio y compartidas ---
	"github.com/davicafu/metamood/internal/shared/infra/platform/metrics"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 5 * time.Second

// TrackService define los casos de uso de consulta e ingesta de pistas.
type TrackService struct {
	repo      trackDomain.TrackRepository
	stats     trackDomain.TrackStatsRepository
	analytics trackDomain.TrackAnalyticsRepository // opcional
	fields    *trackDomain.FieldRegistry
	metrics   *metrics.QueryMetrics // opcional
	timeout   time.Duration
	log       *zap.Logger
}

// Option configura dependencias opcionales del servicio.
type Option func(*TrackService)

// WithAnalytics replica la ingesta en el repositorio analítico y le delega conteo y medias.
func WithAnalytics(a trackDomain.TrackAnalyticsRepository) Option {
	return func(s *TrackService) {
		if a != nil {
			s.analytics = a
			s.stats = a
		}
	}
}

func WithMetrics(m *metrics.QueryMetrics) Option {
	return func(s *TrackService) { s.metrics = m }
}

// WithQueryTimeout limita cada materialización; <= 0 deja el valor por defecto.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *TrackService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewTrackService es el constructor. stats sirve /count y /averages salvo que se configure analítica.
func NewTrackService(repo trackDomain.TrackRepository, stats trackDomain.TrackStatsRepository, fields *trackDomain.FieldRegistry, log *zap.Logger, opts ...Option) *TrackService {
	s := &TrackService{
		repo:    repo,
		stats:   stats,
		fields:  fields,
		timeout: defaultQueryTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ------------------ Consultas ------------------

// GetTrackPageFromQuery acepta la query string tal cual llega; una clave repetida
// cuenta como consulta inválida igual que cualquier otro error de validación.
func (s *TrackService) GetTrackPageFromQuery(ctx context.Context, values url.Values) ([]trackDomain.TrackView, error) {
	params, err := trackDomain.ParamsFromValues(values)
	if err != nil {
		s.metrics.ObserveQuery(metrics.EndpointTracks, metrics.StatusInvalid, 0, 0)
		s.log.Debug("Rejected track query", zap.Error(err))
		return nil, err
	}
	return s.GetTrackPage(ctx, params)
}

// GetTrackPage valida los parámetros, construye la consulta y la materializa.
// Cero coincidencias devuelve un slice vacío, no un error.
func (s *TrackService) GetTrackPage(ctx context.Context, params map[string]string) ([]trackDomain.TrackView, error) {
	start := time.Now()

	spec, err := trackDomain.ParseQuerySpec(s.fields, params)
	if err != nil {
		s.metrics.ObserveQuery(metrics.EndpointTracks, metrics.StatusInvalid, time.Since(start), 0)
		s.log.Debug("Rejected track query", zap.Error(err))
		return nil, err
	}

	q := trackDomain.Apply(spec, trackDomain.NewTrackQuery())

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	views, err := s.repo.Materialize(qctx, q)
	if err != nil {
		s.metrics.ObserveQuery(metrics.EndpointTracks, metrics.StatusBackend, time.Since(start), 0)
		s.log.Error("Failed to materialize track query",
			zap.String("sort_by", spec.SortField.Name),
			zap.Int("page_size", spec.PageSize),
			zap.Int("page_number", spec.PageNumber),
			zap.Error(err),
		)
		return nil, trackDomain.BackendFailure("materialize tracks", err)
	}
	if views == nil {
		views = []trackDomain.TrackView{}
	}

	status := metrics.StatusOK
	if len(views) == 0 {
		status = metrics.StatusEmpty
	}
	s.metrics.ObserveQuery(metrics.EndpointTracks, status, time.Since(start), len(views))

	return views, nil
}

// Count devuelve el número de filas de una tabla conocida.
func (s *TrackService) Count(ctx context.Context, table string) (int64, error) {
	start := time.Now()
	if table != trackDomain.SpotifyTracksTable {
		s.metrics.ObserveQuery(metrics.EndpointCount, metrics.StatusInvalid, time.Since(start), 0)
		return 0, trackDomain.ErrUnknownTable
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.stats.Count(qctx)
	if err != nil {
		s.metrics.ObserveQuery(metrics.EndpointCount, metrics.StatusBackend, time.Since(start), 0)
		s.log.Error("Failed to count tracks", zap.String("table", table), zap.Error(err))
		return 0, trackDomain.BackendFailure("count tracks", err)
	}

	s.metrics.ObserveQuery(metrics.EndpointCount, metrics.StatusOK, time.Since(start), 0)
	return n, nil
}

// Averages devuelve las medias de las métricas de audio.
func (s *TrackService) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	start := time.Now()

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	avg, err := s.stats.Averages(qctx)
	if err != nil {
		s.metrics.ObserveQuery(metrics.EndpointAvg, metrics.StatusBackend, time.Since(start), 0)
		s.log.Error("Failed to compute averages", zap.Error(err))
		return trackDomain.MetricAverages{}, trackDomain.BackendFailure("average metrics", err)
	}

	s.metrics.ObserveQuery(metrics.EndpointAvg, metrics.StatusOK, time.Since(start), 0)
	return avg, nil
}

// ------------------ Ingesta ------------------

// UpsertTracks guarda el lote y lo replica en analítica; un fallo analítico solo se registra.
func (s *TrackService) UpsertTracks(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	if len(tracks) == 0 {
		return nil
	}
	for i := range tracks {
		if err := tracks[i].Validate(); err != nil {
			return err
		}
	}

	if err := s.repo.UpsertBatch(ctx, tracks); err != nil {
		s.log.Error("Failed to upsert tracks", zap.Int("count", len(tracks)), zap.Error(err))
		return err
	}

	if s.analytics != nil {
		if err := s.analytics.LogBatch(ctx, tracks); err != nil {
			s.log.Warn("⚠️ Analytics mirror failed for track batch", zap.Int("count", len(tracks)), zap.Error(err))
		}
	}
	return nil
}

// DeleteTrack elimina una pista y replica el borrado en analítica.
func (s *TrackService) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, trackDomain.ErrTrackNotFound) {
			s.log.Warn("Track not found", zap.String("track_id", id.String()))
		} else {
			s.log.Error("Failed to delete track", zap.String("track_id", id.String()), zap.Error(err))
		}
		return err
	}

	if s.analytics != nil {
		if err := s.analytics.LogDeletion(ctx, id); err != nil {
			s.log.Warn("⚠️ Analytics mirror failed for track deletion", zap.String("track_id", id.String()), zap.Error(err))
		}
	}
	return nil
}
