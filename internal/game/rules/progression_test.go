package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 10, rules.XPForLevel(1))
	assert.Equal(t, 30, rules.XPForLevel(3))
}

func TestCanLevelUp(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	assert.False(t, rules.CanLevelUp(c))
	c.Nivel.XP = 10
	assert.True(t, rules.CanLevelUp(c))
	assert.False(t, rules.CanLevelUp(&character.Character{}))
}

func TestLevelUpPatch(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	c.Nivel.XP = 14
	c.Progressao.PontosAtributo = 1

	p, newLevel, ok := rules.LevelUpPatch(c)
	require.True(t, ok)
	assert.Equal(t, 2, newLevel)
	p.Apply(c)

	assert.Equal(t, character.Level{Value: 2, XP: 4, XPProximo: 30}, *c.Nivel)
	assert.Equal(t, character.Progression{PontosAtributo: 2, PontosHabilidade: 2}, *c.Progressao)
}

func TestLevelUpPatch_NotEnoughXP(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	p, _, ok := rules.LevelUpPatch(c)
	assert.False(t, ok)
	assert.True(t, p.IsEmpty())
}

func TestLevelUpPatch_XPNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := stableCharacter(4, 4, 4, 4)
		c.Nivel.XPProximo = rapid.IntRange(0, 100).Draw(t, "next")
		c.Nivel.XP = rapid.IntRange(0, 200).Draw(t, "xp")
		p, _, ok := rules.LevelUpPatch(c)
		if ok != (c.Nivel.XP >= c.Nivel.XPProximo) {
			t.Fatalf("ok=%v for xp=%d next=%d", ok, c.Nivel.XP, c.Nivel.XPProximo)
		}
		if ok {
			xp, _ := p.Int(character.NivelXP)
			if xp < 0 {
				t.Fatalf("negative xp %d", xp)
			}
		}
	})
}

func TestMeetsPrerequisites(t *testing.T) {
	c := stableCharacter(6, 4, 3, 4)

	cases := []struct {
		name string
		item character.Item
		want bool
	}{
		{"none", character.Item{}, true},
		{"attribute met", character.Item{Prerequisitos: "Fisico 5"}, true},
		{"attribute unmet", character.Item{Prerequisitos: "fisico 5, mental 4"}, false},
		{"unknown word ignored", character.Item{Prerequisitos: "sorte 9"}, true},
		{"level unmet", character.Item{NivelMinimo: 2}, false},
		{"level met", character.Item{NivelMinimo: 1, Prerequisitos: "acao 4"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := tc.item
			assert.Equal(t, tc.want, rules.MeetsPrerequisites(c, &item))
		})
	}
}

func TestAdjustItemForCharacter_SpellCost(t *testing.T) {
	c := stableCharacter(4, 4, 8, 4)
	spell := &character.Item{Type: character.Magia, CustoMP: 3}

	adjusted := rules.AdjustItemForCharacter(c, spell)
	assert.Equal(t, 1, adjusted.CustoMP)
	assert.Equal(t, 3, spell.CustoMP, "input untouched")

	weak := stableCharacter(4, 4, 1, 4)
	assert.Equal(t, 5, rules.AdjustItemForCharacter(weak, spell).CustoMP)
}

func TestAdjustItemForCharacter_SpellCostNeverBelowOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := stableCharacter(4, 4, rapid.IntRange(1, 15).Draw(t, "mental"), 4)
		cost := rapid.IntRange(1, 10).Draw(t, "cost")
		got := rules.AdjustItemForCharacter(c, &character.Item{Type: character.Magia, CustoMP: cost}).CustoMP
		if got < 1 {
			t.Fatalf("cost %d", got)
		}
	})
}

func TestAdjustItemForCharacter_ClassBonus(t *testing.T) {
	c := stableCharacter(4, 4, 4, 4)
	c.Classe = "Guerreiro"
	skill := &character.Item{Type: character.Habilidade, Categoria: "combate", Bonus: 1}

	adjusted := rules.AdjustItemForCharacter(c, skill)
	assert.Equal(t, 2, adjusted.Bonus)
	assert.Equal(t, 1, adjusted.BonusClasse)

	other := &character.Item{Type: character.Habilidade, Categoria: "magicas"}
	assert.Equal(t, 0, rules.AdjustItemForCharacter(c, other).Bonus)
}
