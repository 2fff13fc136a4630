package domain

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldKind es la variante semántica de un campo filtrable/ordenable.
type FieldKind int

const (
	KindNumeric FieldKind = iota + 1
	KindDate
	KindText
)

func (k FieldKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// DateLayout es el formato canónico de fechas sin hora.
const DateLayout = "2006-01-02"

// FieldValue es un valor etiquetado por su FieldKind. Solo el miembro
// correspondiente a Kind es significativo; las fechas siempre están en UTC.
type FieldValue struct {
	Kind FieldKind
	Num  float64
	Time time.Time
	Text string
}

func NumberValue(f float64) FieldValue { return FieldValue{Kind: KindNumeric, Num: f} }
func DateValue(t time.Time) FieldValue { return FieldValue{Kind: KindDate, Time: t.UTC()} }
func TextValue(s string) FieldValue { return FieldValue{Kind: KindText, Text: s} }

// Native devuelve float64, time.Time o string según Kind.
func (v FieldValue) Native() interface{} {
	s, ok := strategies[v.Kind]
	if !ok {
		return nil
	}
	return s.native(v)
}

// String devuelve la forma canónica de parámetro del valor.
func (v FieldValue) String() string {
	s, ok := strategies[v.Kind]
	if !ok {
		return ""
	}
	return s.format(v)
}

var errEmptyValue = errors.New("value must not be empty")

// kindStrategy agrupa parseo, formato y comparación de una variante.
type kindStrategy struct {
	parse   func(raw string) (FieldValue, error)
	format  func(v FieldValue) string
	compare func(a, b FieldValue) int
	native  func(v FieldValue) interface{}
}

var strategies = map[FieldKind]kindStrategy{
	KindNumeric: {
		parse: func(raw string) (FieldValue, error) {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return FieldValue{}, fmt.Errorf("%q is not a number", raw)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return FieldValue{}, fmt.Errorf("%q is not a finite number", raw)
			}
			return NumberValue(f), nil
		},
		format:  func(v FieldValue) string { return strconv.FormatFloat(v.Num, 'g', -1, 64) },
		compare: func(a, b FieldValue) int { return cmp.Compare(a.Num, b.Num) },
		native:  func(v FieldValue) interface{} { return v.Num },
	},
	KindDate: {
		parse: func(raw string) (FieldValue, error) {
			if t, err := time.Parse(DateLayout, raw); err == nil {
				return DateValue(t), nil
			}
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return FieldValue{}, fmt.Errorf("%q is not a date (use YYYY-MM-DD or RFC3339)", raw)
			}
			return DateValue(t), nil
		},
		format: func(v FieldValue) string {
			if v.Time.Equal(v.Time.Truncate(24 * time.Hour)) {
				return v.Time.Format(DateLayout)
			}
			return v.Time.Format(time.RFC3339Nano)
		},
		compare: func(a, b FieldValue) int { return a.Time.Compare(b.Time) },
		native:  func(v FieldValue) interface{} { return v.Time },
	},
	KindText: {
		parse:   func(raw string) (FieldValue, error) { return TextValue(raw), nil },
		format:  func(v FieldValue) string { return v.Text },
		compare: func(a, b FieldValue) int { return strings.Compare(a.Text, b.Text) },
		native:  func(v FieldValue) interface{} { return v.Text },
	},
}

func strategyFor(k FieldKind) kindStrategy {
	s, ok := strategies[k]
	if !ok {
		panic(fmt.Sprintf("unknown field kind %d", k))
	}
	return s
}

// Parse convierte un parámetro en bruto según la variante. Los espacios de los
// extremos se ignoran en números y fechas; en texto forman parte del valor.
func (k FieldKind) Parse(raw string) (FieldValue, error) {
	if strings.TrimSpace(raw) == "" {
		return FieldValue{}, errEmptyValue
	}
	if k != KindText {
		raw = strings.TrimSpace(raw)
	}
	return strategyFor(k).parse(raw)
}

// Compare ordena dos valores de la misma variante (-1, 0, +1).
func (k FieldKind) Compare(a, b FieldValue) int {
	return strategyFor(k).compare(a, b)
}

// ValueOf envuelve un valor nativo (el de un sharedDomain.Criterion) en un FieldValue.
func (k FieldKind) ValueOf(native interface{}) (FieldValue, bool) {
	switch k {
	case KindNumeric:
		switch n := native.(type) {
		case float64:
			return NumberValue(n), true
		case int:
			return NumberValue(float64(n)), true
		case int64:
			return NumberValue(float64(n)), true
		}
	case KindDate:
		if t, ok := native.(time.Time); ok {
			return DateValue(t), true
		}
	case KindText:
		if s, ok := native.(string); ok {
			return TextValue(s), true
		}
	}
	return FieldValue{}, false
}
