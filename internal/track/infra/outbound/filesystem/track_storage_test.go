package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "6f1c1d8e-6a55-4d0e-9a3f-3b3b3b3b3b3b", "name": "Intro", "release_date": "2019-05-01T00:00:00Z", "popularity": 40},
		{"name": "No Id", "release_date": "2020-01-01T00:00:00Z", "energy": 0.7}
	]`), 0644))

	tracks, err := NewJSONTrackStorage(path).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "6f1c1d8e-6a55-4d0e-9a3f-3b3b3b3b3b3b", tracks[0].ID.String())
	assert.Equal(t, 40, *tracks[0].Popularity)
	assert.NotEqual(t, tracks[0].ID, tracks[1].ID)
	assert.Equal(t, 0.7, *tracks[1].Energy)

	// el id derivado es estable
	again, err := NewJSONTrackStorage(path).GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tracks[1].ID, again[1].ID)
}

func TestGetAll_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	tracks, err := NewJSONTrackStorage(filepath.Join(dir, "missing.json")).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tracks)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	tracks, err = NewJSONTrackStorage(empty).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestGetAll_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0644))
	_, err := NewJSONTrackStorage(bad).GetAll(context.Background())
	assert.Error(t, err)

	noName := filepath.Join(dir, "noname.json")
	require.NoError(t, os.WriteFile(noName, []byte(`[{"release_date": "2020-01-01T00:00:00Z"}]`), 0644))
	_, err = NewJSONTrackStorage(noName).GetAll(context.Background())
	assert.ErrorIs(t, err, trackDomain.ErrInvalidTrack)
}
