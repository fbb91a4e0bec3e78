package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

func TestQuickRestPatch(t *testing.T) {
	c := stableCharacter(5, 4, 4, 4) // pv 25, pm 13
	c.PV.Value = 3
	c.PM.Value = 10

	rules.QuickRestPatch(c).Apply(c)
	assert.Equal(t, 15, c.PV.Value)
	assert.Equal(t, 13, c.PM.Value)
}

func TestLongRestPatch(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	c.PV.Value = 0
	c.PM.Value = 1

	rules.LongRestPatch(c).Apply(c)
	assert.Equal(t, c.PV.Max, c.PV.Value)
	assert.Equal(t, c.PM.Max, c.PM.Value)
	assert.True(t, rules.LongRestPatch(c).IsEmpty())
}

func TestHealAndSpendPatch(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	c.PV.Value = 20

	p := rules.HealPatch(c, character.PVValue, 10)
	v, _ := p.Int(character.PVValue)
	assert.Equal(t, 22, v)

	p = rules.SpendPatch(c, character.PMValue, 20)
	v, _ = p.Int(character.PMValue)
	assert.Equal(t, 0, v)
}

func TestRestPatches_NoPools(t *testing.T) {
	c := &character.Character{}
	assert.True(t, rules.QuickRestPatch(c).IsEmpty())
	assert.True(t, rules.HealPatch(c, character.PMValue, 3).IsEmpty())
}
