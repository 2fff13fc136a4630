package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnd_FlattensInOrder(t *testing.T) {
	a := Conditions{{Field: "popularity", Op: OpGte, Value: 10.0}}
	b := Conditions{{Field: "popularity", Op: OpLte, Value: 20.0}, {Field: "name", Op: OpEq, Value: "x"}}

	conds := And(a, nil, b).ToConditions()

	assert.Equal(t, []Criterion{
		{Field: "popularity", Op: OpGte, Value: 10.0},
		{Field: "popularity", Op: OpLte, Value: 20.0},
		{Field: "name", Op: OpEq, Value: "x"},
	}, conds)
}

func TestConditions_ReturnsCopy(t *testing.T) {
	orig := Conditions{{Field: "energy", Op: OpEq, Value: 0.5}}

	got := orig.ToConditions()
	got[0].Field = "valence"

	assert.Equal(t, "energy", orig[0].Field)
}

func TestAnd_Empty(t *testing.T) {
	assert.Empty(t, And().ToConditions())
}
