package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
)

// TrackAnalyticsRepo implementa TrackAnalyticsRepository para ClickHouse.
// Cada ingesta añade una versión de la fila; FINAL se queda con la última.
type TrackAnalyticsRepo struct {
	db *sql.DB
}

// NewTrackAnalyticsRepo es el constructor.
func NewTrackAnalyticsRepo(addr string, dbName string) (*TrackAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &TrackAnalyticsRepo{db: conn}, nil
}

// LogBatch inserta un lote de pistas. ClickHouse funciona mejor con inserciones en lotes.
func (r *TrackAnalyticsRepo) LogBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tracks_log (id, name, release_date, popularity, acousticness,
		danceability, energy, instrumentalness, liveness, loudness, speechiness, tempo, valence, is_deleted, version)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	version := time.Now().UTC()
	for _, t := range tracks {
		var popularity *int32
		if t.Popularity != nil {
			p := int32(*t.Popularity)
			popularity = &p
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.ReleaseDate.UTC(), popularity, t.Acousticness,
			t.Danceability, t.Energy, t.Instrumentalness, t.Liveness, t.Loudness,
			t.Speechiness, t.Tempo, t.Valence, uint8(0), version,
		); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for track %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// LogDeletion marca la pista como borrada con una versión nueva.
func (r *TrackAnalyticsRepo) LogDeletion(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tracks_log (id, is_deleted, version) VALUES (?, 1, ?)`,
		id, time.Now().UTC(),
	)
	return err
}

func (r *TrackAnalyticsRepo) Count(ctx context.Context) (int64, error) {
	var n uint64
	if err := r.db.QueryRowContext(ctx, `SELECT count() FROM tracks_log FINAL WHERE is_deleted = 0`).Scan(&n); err != nil {
		return 0, err
	}
	return int64(n), nil
}

func (r *TrackAnalyticsRepo) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	var avg trackDomain.MetricAverages
	targets := avg.Targets()
	dest := make([]interface{}, len(targets))
	for i := range targets {
		dest[i] = targets[i]
	}

	if err := r.db.QueryRowContext(ctx, averagesQuery()).Scan(dest...); err != nil {
		return trackDomain.MetricAverages{}, err
	}
	return avg, nil
}

// averagesQuery usa avgOrNull para no devolver NaN sobre un conjunto vacío.
func averagesQuery() string {
	cols := make([]string, len(trackDomain.AverageColumns))
	for i, c := range trackDomain.AverageColumns {
		cols[i] = fmt.Sprintf("ifNull(avgOrNull(%s), 0)", c)
	}
	return fmt.Sprintf("SELECT %s FROM tracks_log FINAL WHERE is_deleted = 0", strings.Join(cols, ", "))
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *TrackAnalyticsRepo) InitSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS tracks_log (
			id               UUID,
			name             String,
			release_date     DateTime64(3, 'UTC'),
			popularity       Nullable(Int32),
			acousticness     Nullable(Float64),
			danceability     Nullable(Float64),
			energy           Nullable(Float64),
			instrumentalness Nullable(Float64),
			liveness         Nullable(Float64),
			loudness         Nullable(Float64),
			speechiness      Nullable(Float64),
			tempo            Nullable(Float64),
			valence          Nullable(Float64),
			is_deleted       UInt8,
			version          DateTime64(9, 'UTC')
		) ENGINE = ReplacingMergeTree(version)
		ORDER BY id;
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *TrackAnalyticsRepo) Close() error {
	return r.db.Close()
}

// Verificación estática de la interfaz.
var _ trackDomain.TrackAnalyticsRepository = (*TrackAnalyticsRepo)(nil)
