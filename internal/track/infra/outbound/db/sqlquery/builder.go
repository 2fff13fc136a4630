package sqlquery

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	sharedUtils "github.com/davicafu/metamood/internal/shared/infra/utils"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
)

var (
	ErrUnsupportedColumn   = errors.New("unsupported column")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

var supportedOps = map[sharedDomain.Operator]bool{
	sharedDomain.OpEq:  true,
	sharedDomain.OpGt:  true,
	sharedDomain.OpGte: true,
	sharedDomain.OpLt:  true,
	sharedDomain.OpLte: true,
}

// ViewColumns es el orden de columnas que leen los repositorios SQL.
var ViewColumns = []string{
	trackDomain.ColumnName,
	trackDomain.ColumnReleaseDate,
	trackDomain.ColumnPopularity,
	trackDomain.ColumnAcousticness,
	trackDomain.ColumnDanceability,
	trackDomain.ColumnEnergy,
	trackDomain.ColumnInstrumentalness,
	trackDomain.ColumnLiveness,
	trackDomain.ColumnLoudness,
	trackDomain.ColumnSpeechiness,
	trackDomain.ColumnTempo,
	trackDomain.ColumnValence,
}

// Builder compila un TrackQuery a SQL. Solo acepta columnas del registro y
// operadores cerrados, así que ningún texto del cliente llega al SQL.
type Builder struct {
	dialect Dialect
	fields  *trackDomain.FieldRegistry
}

func NewBuilder(d Dialect, fields *trackDomain.FieldRegistry) *Builder {
	return &Builder{dialect: d, fields: fields}
}

// Select genera SELECT ... WHERE ... ORDER BY ... LIMIT ... OFFSET ... sobre table.
func (b *Builder) Select(table string, q trackDomain.TrackQuery) (string, []interface{}, error) {
	var (
		sb      strings.Builder
		clauses []string
		args    []interface{}
	)

	for _, c := range q.Conditions() {
		f, ok := b.fields.ByColumn(c.Field)
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedColumn, c.Field)
		}
		if !supportedOps[c.Op] {
			return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Op)
		}
		v, ok := f.Kind.ValueOf(c.Value)
		if !ok {
			return "", nil, fmt.Errorf("value %v does not match %s column %q", c.Value, f.Kind, f.Column)
		}
		args = append(args, b.encode(v))
		clauses = append(clauses, fmt.Sprintf("%s %s %s%s", f.Column, c.Op, b.dialect.Bind(len(args)), b.dialect.Cast(f.Kind)))
	}

	sb.WriteString("SELECT ")
	sb.WriteString(trackDomain.ColumnID + ", ")
	sb.WriteString(strings.Join(ViewColumns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	sorts := q.Sorts()
	if len(sorts) > 0 {
		keys := make([]string, 0, len(sorts))
		for _, s := range sorts {
			// El ID nunca es nulo y su orden de texto coincide con el de UUID en Postgres.
			if s.Field == trackDomain.ColumnID {
				keys = append(keys, trackDomain.ColumnID+sharedUtils.Ternary(s.Desc, " DESC", " ASC"))
				continue
			}
			f, ok := b.fields.ByColumn(s.Field)
			if !ok {
				return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedColumn, s.Field)
			}
			collate := ""
			if f.Kind == trackDomain.KindText {
				collate = b.dialect.TextCollate
			}
			keys = append(keys, fmt.Sprintf("%s%s %s", f.Column, collate,
				sharedUtils.Ternary(s.Desc, "DESC NULLS LAST", "ASC NULLS FIRST")))
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(keys, ", "))
	}

	if w, ok := q.Window(); ok {
		args = append(args, w.Limit, w.Offset)
		fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", b.dialect.Bind(len(args)-1), b.dialect.Bind(len(args)))
	}

	return sb.String(), args, nil
}

func (b *Builder) encode(v trackDomain.FieldValue) interface{} {
	if v.Kind == trackDomain.KindDate {
		return b.dialect.EncodeDate(v.Time)
	}
	return v.Native()
}

// AveragesQuery calcula las medias de trackDomain.AverageColumns; sin datos devuelve 0.
func AveragesQuery(table string) string {
	cols := make([]string, len(trackDomain.AverageColumns))
	for i, c := range trackDomain.AverageColumns {
		cols[i] = fmt.Sprintf("COALESCE(AVG(%s), 0)", c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
}

// ---------------- Escaneo de filas ----------------

// ViewRow son los destinos de Scan de una fila id + ViewColumns.
type ViewRow struct {
	ID         uuid.UUID
	Name       string
	Popularity sql.NullInt64
	Metrics    [9]sql.NullFloat64
}

// Dest devuelve los destinos en orden id + ViewColumns; date es el destino de release_date.
func (r *ViewRow) Dest(date interface{}) []interface{} {
	dest := []interface{}{&r.ID, &r.Name, date, &r.Popularity}
	for i := range r.Metrics {
		dest = append(dest, &r.Metrics[i])
	}
	return dest
}

func (r *ViewRow) View(releaseDate time.Time) trackDomain.TrackView {
	v := trackDomain.TrackView{ID: r.ID, Name: r.Name, ReleaseDate: releaseDate.UTC()}
	if r.Popularity.Valid {
		p := int(r.Popularity.Int64)
		v.Popularity = &p
	}
	targets := []**float64{
		&v.Acousticness, &v.Danceability, &v.Energy, &v.Instrumentalness, &v.Liveness,
		&v.Loudness, &v.Speechiness, &v.Tempo, &v.Valence,
	}
	for i, m := range r.Metrics {
		if m.Valid {
			f := m.Float64
			*targets[i] = &f
		}
	}
	return v
}

// RecordArgs devuelve los valores de un registro en orden id + ViewColumns.
func RecordArgs(d Dialect, t trackDomain.TrackRecord) []interface{} {
	return []interface{}{
		t.ID.String(), t.Name, d.EncodeDate(t.ReleaseDate), nullInt(t.Popularity),
		nullFloat(t.Acousticness), nullFloat(t.Danceability), nullFloat(t.Energy),
		nullFloat(t.Instrumentalness), nullFloat(t.Liveness), nullFloat(t.Loudness),
		nullFloat(t.Speechiness), nullFloat(t.Tempo), nullFloat(t.Valence),
	}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
