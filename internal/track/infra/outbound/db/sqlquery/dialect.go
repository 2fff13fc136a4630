package sqlquery

import (
	"fmt"
	"time"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
)

// SQLiteTimeLayout es de ancho fijo y en UTC, así el orden de texto coincide con el cronológico.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Dialect recoge lo que cambia entre motores SQL.
type Dialect struct {
	Name string
	// Bind devuelve el placeholder del argumento n (desde 1).
	Bind func(n int) string
	// Cast es el sufijo de tipo tras el placeholder de un valor de filtro.
	Cast func(kind trackDomain.FieldKind) string
	// TextCollate fuerza orden por bytes en columnas de texto.
	TextCollate string
	EncodeDate  func(t time.Time) interface{}
}

var SQLite = Dialect{
	Name:       "sqlite",
	Bind:       func(int) string { return "?" },
	Cast:       func(trackDomain.FieldKind) string { return "" },
	EncodeDate: func(t time.Time) interface{} { return t.UTC().Format(SQLiteTimeLayout) },
}

var Postgres = Dialect{
	Name: "postgres",
	Bind: func(n int) string { return fmt.Sprintf("$%d", n) },
	Cast: func(kind trackDomain.FieldKind) string {
		switch kind {
		case trackDomain.KindNumeric:
			return "::float8"
		case trackDomain.KindDate:
			return "::timestamptz"
		default:
			return "::text"
		}
	},
	TextCollate: ` COLLATE "C"`,
	EncodeDate:  func(t time.Time) interface{} { return t.UTC() },
}
