package domain

import (
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuerySpec_Defaults(t *testing.T) {
	reg := NewTrackFieldRegistry()

	spec, err := ParseQuerySpec(reg, map[string]string{"pageSize": "10", "pageNumber": "1"})
	require.NoError(t, err)
	assert.Empty(t, spec.Filters)
	assert.Equal(t, "name", spec.SortField.Name)
	assert.Equal(t, 10, spec.PageSize)
	assert.Equal(t, 1, spec.PageNumber)

	spec, err = ParseQuerySpec(reg, map[string]string{"pagesize": "5", "PAGENUMBER": "2", "sortby": "Popularity"})
	require.NoError(t, err)
	assert.Equal(t, ColumnPopularity, spec.SortField.Column)
	assert.Equal(t, 5, spec.Pagination().Offset)
	assert.Equal(t, 5, spec.Pagination().Limit)

	spec, err = ParseQuerySpec(reg, map[string]string{"pageSize": "5", "pageNumber": "1", "sortBy": ""})
	require.NoError(t, err)
	assert.Equal(t, "name", spec.SortField.Name)
}

func TestParseQuerySpec_RangeAndExact(t *testing.T) {
	reg := NewTrackFieldRegistry()

	spec, err := ParseQuerySpec(reg, map[string]string{
		"pageSize":       "20",
		"pageNumber":     "1",
		"popularity_min": "50",
		"popularity_max": "80",
		"name":           "Intro",
		"releaseDate":    "2020-01-01",
		"ENERGY_MIN":     "0.5",
	})
	require.NoError(t, err)
	require.Len(t, spec.Filters, 4)

	// Orden del registro, no el de la entrada
	assert.Equal(t, "name", spec.Filters[0].Field.Name)
	assert.Equal(t, "Intro", spec.Filters[0].Exact.Text)
	assert.Equal(t, "releaseDate", spec.Filters[1].Field.Name)
	assert.NotNil(t, spec.Filters[1].Exact)
	assert.Equal(t, "popularity", spec.Filters[2].Field.Name)
	assert.Equal(t, 50.0, spec.Filters[2].Min.Num)
	assert.Equal(t, 80.0, spec.Filters[2].Max.Num)
	assert.Equal(t, "energy", spec.Filters[3].Field.Name)
	assert.Nil(t, spec.Filters[3].Max)

	conds := spec.Criteria().ToConditions()
	require.Len(t, conds, 5)
	assert.Equal(t, ColumnPopularity, conds[2].Field)
	assert.Equal(t, 50.0, conds[2].Value)
}

func TestParseQuerySpec_ValidationErrors(t *testing.T) {
	reg := NewTrackFieldRegistry()
	page := func(extra map[string]string) map[string]string {
		m := map[string]string{"pageSize": "10", "pageNumber": "1"}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	cases := []struct {
		desc   string
		params map[string]string
	}{
		{"missing pageSize", map[string]string{"pageNumber": "1"}},
		{"missing pageNumber", map[string]string{"pageSize": "1"}},
		{"non-integer pageSize", map[string]string{"pageSize": "ten", "pageNumber": "1"}},
		{"zero pageSize", map[string]string{"pageSize": "0", "pageNumber": "1"}},
		{"negative pageNumber", map[string]string{"pageSize": "10", "pageNumber": "-1"}},
		{"page overflow", map[string]string{"pageSize": "2", "pageNumber": strconv.Itoa(int(^uint(0) >> 1))}},
		{"bogus sortBy", page(map[string]string{"sortby": "bogus_field"})},
		{"unknown field", page(map[string]string{"genre": "jazz"})},
		{"unknown range field", page(map[string]string{"genre_min": "1"})},
		{"unparseable bound", page(map[string]string{"tempo_min": "fast"})},
		{"unparseable date", page(map[string]string{"releaseDate_max": "yesterday"})},
		{"min greater than max", page(map[string]string{"energy_min": "0.9", "energy_max": "0.1"})},
		{"range on text field", page(map[string]string{"name_min": "a"})},
		{"exact and range", page(map[string]string{"tempo": "120", "tempo_min": "100"})},
		{"empty exact value", page(map[string]string{"valence": ""})},
		{"empty text value", page(map[string]string{"name": " "})},
		{"case collision", page(map[string]string{"Popularity": "1", "popularity": "2"})},
		{"stacked range suffixes", page(map[string]string{"popularity_max_min": "50"})},
		{"repeated min suffix", page(map[string]string{"popularity_min_min": "50"})},
		{"stacked suffixes on text", page(map[string]string{"name_min_max": "x"})},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := ParseQuerySpec(reg, tc.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Msg)
		})
	}
}

func TestParseQuerySpec_ParamsRoundTrip(t *testing.T) {
	reg := NewTrackFieldRegistry()
	inputs := []map[string]string{
		{"pageSize": "10", "pageNumber": "1"},
		{"pageSize": "5", "pageNumber": "2", "sortBy": "popularity"},
		{"pageSize": "20", "pageNumber": "3", "popularity_min": "50", "popularity_max": "80"},
		{"pageSize": "7", "pageNumber": "1", "releaseDate_min": "2019-12-31T23:30:00Z", "loudness": "-5.25", "name": "Só"},
		{"pageSize": "1", "pageNumber": "1", "name": " Intro "},
	}

	for _, in := range inputs {
		first, err := ParseQuerySpec(reg, in)
		require.NoError(t, err)

		second, err := ParseQuerySpec(reg, first.Params())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestParamsFromValues(t *testing.T) {
	params, err := ParamsFromValues(url.Values{"pageSize": {"10"}, "energy_min": {"0.2"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pageSize": "10", "energy_min": "0.2"}, params)

	_, err = ParamsFromValues(url.Values{"pageSize": {"10", "20"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
