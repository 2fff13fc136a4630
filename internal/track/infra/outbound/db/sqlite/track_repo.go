package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/internal/track/infra/outbound/db/sqlquery"
)

const tracksTable = "tracks"

type TrackRepoSQLite struct {
	db      *sql.DB
	builder *sqlquery.Builder
}

func NewTrackRepoSQLite(db *sql.DB, fields *domain.FieldRegistry) *TrackRepoSQLite {
	return &TrackRepoSQLite{db: db, builder: sqlquery.NewBuilder(sqlquery.SQLite, fields)}
}

// ------------------ Lectura ------------------

// Materialize compila q a SQL y lo ejecuta; el orden y la ventana los aplica SQLite.
func (r *TrackRepoSQLite) Materialize(ctx context.Context, q domain.TrackQuery) ([]domain.TrackView, error) {
	query, args, err := r.builder.Select(tracksTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.TrackView{}
	for rows.Next() {
		var row sqlquery.ViewRow
		var dateStr string
		if err := rows.Scan(row.Dest(&dateStr)...); err != nil {
			return nil, err
		}

		releaseDate, err := time.Parse(sqlquery.SQLiteTimeLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid release_date in DB: %w", err)
		}
		views = append(views, row.View(releaseDate))
	}

	return views, rows.Err()
}

func (r *TrackRepoSQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tracksTable).Scan(&n)
	return n, err
}

func (r *TrackRepoSQLite) Averages(ctx context.Context) (domain.MetricAverages, error) {
	var avg domain.MetricAverages
	targets := avg.Targets()
	dest := make([]interface{}, len(targets))
	for i := range targets {
		dest[i] = targets[i]
	}
	err := r.db.QueryRowContext(ctx, sqlquery.AveragesQuery(tracksTable)).Scan(dest...)
	return avg, err
}

// ------------------ Escritura ------------------

// UpsertBatch inserta o reemplaza las pistas en una transacción.
func (r *TrackRepoSQLite) UpsertBatch(ctx context.Context, tracks []domain.TrackRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tracks (id, name, release_date, popularity, acousticness, danceability, energy,
			instrumentalness, liveness, loudness, speechiness, tempo, valence)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, release_date=excluded.release_date, popularity=excluded.popularity,
			acousticness=excluded.acousticness, danceability=excluded.danceability, energy=excluded.energy,
			instrumentalness=excluded.instrumentalness, liveness=excluded.liveness, loudness=excluded.loudness,
			speechiness=excluded.speechiness, tempo=excluded.tempo, valence=excluded.valence`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, sqlquery.RecordArgs(sqlquery.SQLite, t)...); err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func (r *TrackRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrTrackNotFound
	}
	return nil
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla tracks si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS tracks (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            release_date TEXT NOT NULL,
            popularity INTEGER,
            acousticness REAL,
            danceability REAL,
            energy REAL,
            instrumentalness REAL,
            liveness REAL,
            loudness REAL,
            speechiness REAL,
            tempo REAL,
            valence REAL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_tracks_name ON tracks (name)`)
	return err
}

// Verificación estática de la interfaz.
var (
	_ domain.TrackRepository      = (*TrackRepoSQLite)(nil)
	_ domain.TrackStatsRepository = (*TrackRepoSQLite)(nil)
)
