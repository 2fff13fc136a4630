package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// --- Importaciones del dominio y compartidas ---
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/internal/track/infra/outbound/db/sqlquery"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

const tracksTable = "tracks"

// TrackRepoPostgres implementa TrackRepository y TrackStatsRepository para PostgreSQL.
type TrackRepoPostgres struct {
	db      *sql.DB
	builder *sqlquery.Builder
}

// NewTrackRepoPostgres es el constructor del repositorio.
func NewTrackRepoPostgres(db *sql.DB, fields *trackDomain.FieldRegistry) *TrackRepoPostgres {
	return &TrackRepoPostgres{db: db, builder: sqlquery.NewBuilder(sqlquery.Postgres, fields)}
}

// ------------------ Lectura ------------------

// Materialize traduce q a SQL para Postgres ($1, $2...) y lo ejecuta.
func (r *TrackRepoPostgres) Materialize(ctx context.Context, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	query, args, err := r.builder.Select(tracksTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	views := []trackDomain.TrackView{}
	for rows.Next() {
		var row sqlquery.ViewRow
		var releaseDate time.Time
		if err := rows.Scan(row.Dest(&releaseDate)...); err != nil {
			return nil, fmt.Errorf("db scan error: %w", err)
		}
		views = append(views, row.View(releaseDate))
	}

	return views, rows.Err()
}

func (r *TrackRepoPostgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tracksTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *TrackRepoPostgres) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	var avg trackDomain.MetricAverages
	targets := avg.Targets()
	dest := make([]interface{}, len(targets))
	for i := range targets {
		dest[i] = targets[i]
	}
	if err := r.db.QueryRowContext(ctx, sqlquery.AveragesQuery(tracksTable)).Scan(dest...); err != nil {
		return trackDomain.MetricAverages{}, fmt.Errorf("db error: %w", err)
	}
	return avg, nil
}

// ------------------ Escritura ------------------

// UpsertBatch inserta o reemplaza pistas en una transacción.
func (r *TrackRepoPostgres) UpsertBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (id, name, release_date, popularity, acousticness, danceability, energy,
				instrumentalness, liveness, loudness, speechiness, tempo, valence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name, release_date=EXCLUDED.release_date, popularity=EXCLUDED.popularity,
				acousticness=EXCLUDED.acousticness, danceability=EXCLUDED.danceability, energy=EXCLUDED.energy,
				instrumentalness=EXCLUDED.instrumentalness, liveness=EXCLUDED.liveness, loudness=EXCLUDED.loudness,
				speechiness=EXCLUDED.speechiness, tempo=EXCLUDED.tempo, valence=EXCLUDED.valence`,
			sqlquery.RecordArgs(sqlquery.Postgres, t)...,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteByID elimina una pista por su ID.
func (r *TrackRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return trackDomain.ErrTrackNotFound
	}
	return nil
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresTrackSchema crea la tabla 'tracks' si no existe.
func InitPostgresTrackSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS tracks (
        id UUID PRIMARY KEY,
        name TEXT NOT NULL,
        release_date TIMESTAMP WITH TIME ZONE NOT NULL,
        popularity INTEGER,
        acousticness DOUBLE PRECISION,
        danceability DOUBLE PRECISION,
        energy DOUBLE PRECISION,
        instrumentalness DOUBLE PRECISION,
        liveness DOUBLE PRECISION,
        loudness DOUBLE PRECISION,
        speechiness DOUBLE PRECISION,
        tempo DOUBLE PRECISION,
        valence DOUBLE PRECISION
    )`)
	if err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_tracks_name ON tracks (name COLLATE "C")`)
	return err
}

// Verificación estática de la interfaz.
var (
	_ trackDomain.TrackRepository      = (*TrackRepoPostgres)(nil)
	_ trackDomain.TrackStatsRepository = (*TrackRepoPostgres)(nil)
)
