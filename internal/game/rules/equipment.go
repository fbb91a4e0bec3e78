package rules

import (
	"math"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
)

// EquipmentTotals is the aggregate contribution of a character's items.
type EquipmentTotals struct {
	Armadura int
	Escudo   int
	// Carga is rounded to two decimal places.
	Carga float64
}

// SumEquipment aggregates defense over equipped armor and shields and load
// over every item regardless of equip state.
func SumEquipment(items []*character.Item) EquipmentTotals {
	var t EquipmentTotals
	var carga float64
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Equipado {
			switch item.Type {
			case character.Armadura:
				t.Armadura += item.Defesa
			case character.Escudo:
				t.Escudo += item.Defesa
			}
		}
		carga += item.Peso * float64(max(item.Quantidade, 1))
	}
	t.Carga = RoundLoad(carga)
	return t
}

// RoundLoad rounds a load to two decimal places.
func RoundLoad(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeEquipmentPatch returns the defense and load fields of c that differ
// from the totals of items, followed by the recomputed defense total.
//
// Postcondition: c and items are not modified.
func ComputeEquipmentPatch(c *character.Character, items []*character.Item) character.Patch {
	t := SumEquipment(items)
	var p character.Patch
	setIfChanged(&p, c, character.DefesaArmadura, float64(t.Armadura))
	setIfChanged(&p, c, character.DefesaEscudo, float64(t.Escudo))

	outros := 0
	if c.Defesa != nil {
		outros = c.Defesa.Outros
	}
	setIfChanged(&p, c, character.DefesaValue,
		float64(DefenseValue(AttributeValue(c, character.Acao), t.Armadura, t.Escudo, outros)))

	if cur, ok := c.Value(character.CargaAtual); !ok || RoundLoad(cur) != t.Carga {
		p.Set(character.CargaAtual, t.Carga)
	}
	return p
}
