package domain

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq  Operator = "="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

type LogicalOperator string

// Solo conjunción: no hay árboles OR ni expresiones booleanas anidadas.
const OpAnd LogicalOperator = "AND"

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Field es el nombre de columna de almacenamiento, Value un valor nativo
// (float64, time.Time o string).
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Conditions es una lista fija de condiciones ya resueltas.
type Conditions []Criterion

func (c Conditions) ToConditions() []Criterion {
	out := make([]Criterion, len(c))
	copy(out, c)
	return out
}
