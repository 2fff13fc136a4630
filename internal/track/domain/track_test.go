package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProject_CopiesEveryField(t *testing.T) {
	rec := TrackRecord{
		ID:          uuid.New(),
		Name:        "Blue in Green",
		ReleaseDate: time.Date(1959, 8, 17, 0, 0, 0, 0, time.UTC),
		Popularity:  ptr(71),
		Energy:      ptr(0.21),
		Tempo:       ptr(112.5),
		Valence:     ptr(0.1),
	}

	view := Project(rec)
	assert.Equal(t, rec.ID, view.ID)
	assert.Equal(t, rec.Name, view.Name)
	assert.Equal(t, rec.ReleaseDate, view.ReleaseDate)
	assert.Equal(t, 71, *view.Popularity)
	assert.Equal(t, 0.21, *view.Energy)
	assert.Nil(t, view.Acousticness)

	// La vista no comparte memoria con el registro
	*rec.Popularity = 5
	assert.Equal(t, 71, *view.Popularity)
}

func TestTrackView_JSONUsesCamelCase(t *testing.T) {
	view := Project(TrackRecord{Name: "x", ReleaseDate: time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)})
	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "releaseDate")
	assert.NotContains(t, m, "id")
	assert.Nil(t, m["popularity"])
}

func TestTrackView_Value(t *testing.T) {
	view := TrackView{Name: "a", Popularity: ptr(40), Loudness: ptr(-6.5)}

	v, ok := view.Value(ColumnPopularity)
	require.True(t, ok)
	assert.Equal(t, 40.0, v.Num)

	v, ok = view.Value(ColumnLoudness)
	require.True(t, ok)
	assert.Equal(t, -6.5, v.Num)

	_, ok = view.Value(ColumnTempo)
	assert.False(t, ok, "nil metric is null")

	_, ok = view.Value("no_such_column")
	assert.False(t, ok)

	// Cada columna del registro tiene accesor
	for _, f := range NewTrackFieldRegistry().Fields() {
		_, known := trackAccessors[f.Column]
		assert.True(t, known, f.Column)
	}
}

func TestTrackRecord_Validate(t *testing.T) {
	assert.NoError(t, (&TrackRecord{ID: uuid.New(), Name: "ok"}).Validate())
	assert.ErrorIs(t, (&TrackRecord{Name: "no id"}).Validate(), ErrInvalidTrack)
	assert.ErrorIs(t, (&TrackRecord{ID: uuid.New(), Name: "  "}).Validate(), ErrInvalidTrack)
}
