package sqlquery

import (
	"testing"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	"github.com/davicafu/metamood/internal/shared/infra/platform/query"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectCols = "SELECT id, name, release_date, popularity, acousticness, danceability, energy, instrumentalness, liveness, loudness, speechiness, tempo, valence FROM tracks"

func specQuery(t *testing.T, params map[string]string) trackDomain.TrackQuery {
	t.Helper()
	spec, err := trackDomain.ParseQuerySpec(trackDomain.NewTrackFieldRegistry(), params)
	require.NoError(t, err)
	return trackDomain.Apply(spec, trackDomain.NewTrackQuery())
}

func TestSelect_SQLite(t *testing.T) {
	b := NewBuilder(SQLite, trackDomain.NewTrackFieldRegistry())
	q := specQuery(t, map[string]string{
		"pageSize": "5", "pageNumber": "2", "sortBy": "popularity",
		"popularity_min": "50", "releaseDate_max": "2020-01-31",
	})

	sqlText, args, err := b.Select("tracks", q)
	require.NoError(t, err)
	assert.Equal(t, selectCols+
		" WHERE release_date <= ? AND popularity >= ?"+
		" ORDER BY popularity ASC NULLS FIRST, name ASC NULLS FIRST, id ASC LIMIT ? OFFSET ?", sqlText)
	assert.Equal(t, []interface{}{"2020-01-31T00:00:00.000000000Z", 50.0, 5, 5}, args)
}

func TestSelect_Postgres(t *testing.T) {
	b := NewBuilder(Postgres, trackDomain.NewTrackFieldRegistry())
	q := specQuery(t, map[string]string{
		"pageSize": "10", "pageNumber": "1", "name": "Intro", "releaseDate": "2001-02-03",
	})

	sqlText, args, err := b.Select("tracks", q)
	require.NoError(t, err)
	assert.Equal(t, selectCols+
		" WHERE name = $1::text AND release_date = $2::timestamptz"+
		` ORDER BY name COLLATE "C" ASC NULLS FIRST, id ASC LIMIT $3 OFFSET $4`, sqlText)
	assert.Equal(t, []interface{}{"Intro", time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), 10, 0}, args)
}

func TestSelect_DescendingAndUnpaged(t *testing.T) {
	b := NewBuilder(SQLite, trackDomain.NewTrackFieldRegistry())
	q := trackDomain.NewTrackQuery().OrderBy(query.Sort{Field: trackDomain.ColumnTempo, Desc: true})

	sqlText, args, err := b.Select("tracks", q)
	require.NoError(t, err)
	assert.Equal(t, selectCols+" ORDER BY tempo DESC NULLS LAST", sqlText)
	assert.Empty(t, args)

	q = q.OrderBy(query.Sort{Field: trackDomain.ColumnID, Desc: true})
	sqlText, _, err = b.Select("tracks", q)
	require.NoError(t, err)
	assert.Equal(t, selectCols+" ORDER BY tempo DESC NULLS LAST, id DESC", sqlText)
}

func TestSelect_RejectsOutsideWhitelist(t *testing.T) {
	b := NewBuilder(Postgres, trackDomain.NewTrackFieldRegistry())

	_, _, err := b.Select("tracks", trackDomain.NewTrackQuery().Where(sharedDomain.Conditions{
		{Field: "name; DROP TABLE tracks", Op: sharedDomain.OpEq, Value: "x"},
	}))
	assert.ErrorIs(t, err, ErrUnsupportedColumn)

	_, _, err = b.Select("tracks", trackDomain.NewTrackQuery().Where(sharedDomain.Conditions{
		{Field: trackDomain.ColumnName, Op: "LIKE", Value: "%x%"},
	}))
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, _, err = b.Select("tracks", trackDomain.NewTrackQuery().OrderBy(query.Sort{Field: "random()"}))
	assert.ErrorIs(t, err, ErrUnsupportedColumn)

	// el ID solo ordena, no filtra
	_, _, err = b.Select("tracks", trackDomain.NewTrackQuery().Where(sharedDomain.Conditions{
		{Field: trackDomain.ColumnID, Op: sharedDomain.OpEq, Value: "x"},
	}))
	assert.ErrorIs(t, err, ErrUnsupportedColumn)

	_, _, err = b.Select("tracks", trackDomain.NewTrackQuery().Where(sharedDomain.Conditions{
		{Field: trackDomain.ColumnTempo, Op: sharedDomain.OpEq, Value: "fast"},
	}))
	assert.Error(t, err)
}

func TestAveragesQuery(t *testing.T) {
	assert.Equal(t,
		"SELECT COALESCE(AVG(acousticness), 0), COALESCE(AVG(danceability), 0), COALESCE(AVG(energy), 0), "+
			"COALESCE(AVG(instrumentalness), 0), COALESCE(AVG(liveness), 0), COALESCE(AVG(speechiness), 0), "+
			"COALESCE(AVG(valence), 0) FROM tracks",
		AveragesQuery("tracks"))
}

func TestViewRow_View(t *testing.T) {
	var row ViewRow
	dest := row.Dest(new(string))
	require.Len(t, dest, len(ViewColumns)+1)

	row.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("row"))
	row.Name = "x"
	row.Popularity.Int64, row.Popularity.Valid = 42, true
	row.Metrics[8].Float64, row.Metrics[8].Valid = 0.3, true

	v := row.View(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, row.ID, v.ID)
	assert.Equal(t, 42, *v.Popularity)
	assert.Equal(t, 0.3, *v.Valence)
	assert.Nil(t, v.Tempo)
}
