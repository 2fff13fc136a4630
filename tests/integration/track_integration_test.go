package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/davicafu/metamood/internal/track/application"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/internal/track/infra/outbound/db/sqlite"
	"github.com/davicafu/metamood/internal/track/infra/outbound/filesystem"
	"github.com/davicafu/metamood/tests/mocks"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.InitSQLite(db))
	return db
}

func writeSeed(t *testing.T, tracks []trackDomain.TrackRecord) string {
	raw, err := json.Marshal(tracks)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestTrackSQLiteIntegration_SeedQueryStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewTrackRepoSQLite(db, trackDomain.NewTrackFieldRegistry())
	service := application.NewTrackService(repo, repo, trackDomain.NewTrackFieldRegistry(), zap.NewNop())

	// Seed desde fichero
	tracks, err := filesystem.NewJSONTrackStorage(writeSeed(t, mocks.SampleTracks())).GetAll(ctx)
	require.NoError(t, err)
	require.NoError(t, service.UpsertTracks(ctx, tracks))

	n, err := service.Count(ctx, trackDomain.SpotifyTracksTable)
	require.NoError(t, err)
	assert.EqualValues(t, 15, n)

	// Página 2 por popularidad
	page, err := service.GetTrackPage(ctx, map[string]string{"pageSize": "5", "pageNumber": "2", "sortBy": "popularity"})
	require.NoError(t, err)
	names := make([]string, 0, len(page))
	for _, v := range page {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"song f", "song c", "song m", "song j", "song g"}, names)

	// Re-ingesta idempotente
	require.NoError(t, service.UpsertTracks(ctx, tracks))
	n, err = service.Count(ctx, trackDomain.SpotifyTracksTable)
	require.NoError(t, err)
	assert.EqualValues(t, 15, n)

	// Borrado
	require.NoError(t, service.DeleteTrack(ctx, tracks[0].ID))
	assert.ErrorIs(t, service.DeleteTrack(ctx, tracks[0].ID), trackDomain.ErrTrackNotFound)
}
