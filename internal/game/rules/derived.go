// Package rules holds the pure stat formulas of the ruleset and the
// calculators that turn a character document into a corrective Patch.
//
// Nothing in this package mutates its inputs.
package rules

import "github.com/cory-johannsen/taberneiros/internal/game/character"

const (
	// DefaultAttribute is the value assumed for an absent attribute.
	DefaultAttribute = 4
	// DefenseBase is the flat base of every defense total.
	DefenseBase = 10
	// DefaultCargaMax is the starting load capacity.
	DefaultCargaMax = 40.0
	// XPPerLevel scales the XP threshold of each level.
	XPPerLevel = 10
)

// Modifier returns floor((value - 4) / 2).
//
// Postcondition: Modifier(4) == 0, Modifier(1) == -2, Modifier(15) == 5.
func Modifier(value int) int {
	return floorDiv(value-4, 2)
}

// ClampAttribute bounds an attribute value to [1, 15].
func ClampAttribute(value int) int {
	return min(max(value, character.MinAttribute), character.MaxAttribute)
}

// PVMax returns max(1, fisico*3 + 10).
func PVMax(fisico int) int {
	return max(1, fisico*3+10)
}

// PMMax returns max(0, mental*2 + 5).
func PMMax(mental int) int {
	return max(0, mental*2+5)
}

// DefenseValue returns 10 + acao + armadura + escudo + outros.
func DefenseValue(acao, armadura, escudo, outros int) int {
	return DefenseBase + acao + armadura + escudo + outros
}

// AttributeValue returns the clamped value of attribute name, or
// DefaultAttribute when the document does not carry it.
func AttributeValue(c *character.Character, name character.AttributeName) int {
	a := c.Attribute(name)
	if a == nil {
		return DefaultAttribute
	}
	return ClampAttribute(a.Value)
}

// InitialPatch synthesizes every group a freshly created character is missing.
//
// Postcondition: applying the result leaves no group of c nil; groups already
// present are untouched.
func InitialPatch(c *character.Character) character.Patch {
	var p character.Patch
	for _, name := range character.AllAttributes {
		if c.Attribute(name) == nil {
			p.SetInt(character.ValueField(name), DefaultAttribute)
			p.SetInt(character.ModField(name), Modifier(DefaultAttribute))
		}
	}
	fisico := AttributeValue(c, character.Fisico)
	mental := AttributeValue(c, character.Mental)
	acao := AttributeValue(c, character.Acao)

	if c.PV == nil {
		p.SetInt(character.PVMax, PVMax(fisico))
		p.SetInt(character.PVValue, PVMax(fisico))
	}
	if c.PM == nil {
		p.SetInt(character.PMMax, PMMax(mental))
		p.SetInt(character.PMValue, PMMax(mental))
	}
	if c.Defesa == nil {
		p.SetInt(character.DefesaValue, DefenseValue(acao, 0, 0, 0))
		p.SetInt(character.DefesaBase, DefenseBase)
		p.SetInt(character.DefesaArmadura, 0)
		p.SetInt(character.DefesaEscudo, 0)
		p.SetInt(character.DefesaOutros, 0)
	}
	if c.Recursos == nil {
		p.SetInt(character.MoedasCobre, 0)
		p.SetInt(character.MoedasPrata, 0)
		p.SetInt(character.MoedasOuro, 0)
		p.Set(character.CargaAtual, 0)
		p.Set(character.CargaMax, DefaultCargaMax)
	}
	if c.Progressao == nil {
		p.SetInt(character.PontosAtributo, 0)
		p.SetInt(character.PontosHabilidade, 0)
	}
	if c.Nivel == nil {
		p.SetInt(character.NivelValue, 1)
		p.SetInt(character.NivelXP, 0)
		p.SetInt(character.NivelXPProximo, XPForLevel(1))
	}
	return p
}

// ComputeDerivedPatch returns the fields of c whose stored value differs from
// what the formulas produce.
//
// A nil changed set recomputes everything and also synthesizes missing groups
// (creation). A non-nil set recomputes only derived fields whose inputs
// intersect it; for a stable document with the same change both paths yield
// the same patch.
//
// Postcondition: c is not modified; applying the result and calling again with
// the same arguments yields an empty patch.
func ComputeDerivedPatch(c *character.Character, changed character.FieldSet) character.Patch {
	all := changed == nil
	touched := func(fields ...character.Field) bool {
		return all || changed.HasAny(fields...)
	}

	view := c
	var p character.Patch
	if all {
		p = InitialPatch(c)
		if !p.IsEmpty() {
			view = c.Clone()
			p.Apply(view)
		}
	}

	for _, name := range character.AllAttributes {
		if touched(character.ValueField(name)) {
			setIfChanged(&p, view, character.ModField(name), float64(Modifier(AttributeValue(view, name))))
		}
	}
	if touched(character.FisicoValue) {
		derivePool(&p, view, view.PV, character.PVValue, character.PVMax, PVMax(AttributeValue(view, character.Fisico)))
	}
	if touched(character.MentalValue) {
		derivePool(&p, view, view.PM, character.PMValue, character.PMMax, PMMax(AttributeValue(view, character.Mental)))
	}
	if touched(character.AcaoValue, character.DefesaArmadura, character.DefesaEscudo, character.DefesaOutros) {
		var armadura, escudo, outros int
		if view.Defesa != nil {
			armadura, escudo, outros = view.Defesa.Armadura, view.Defesa.Escudo, view.Defesa.Outros
		}
		setIfChanged(&p, view, character.DefesaValue,
			float64(DefenseValue(AttributeValue(view, character.Acao), armadura, escudo, outros)))
	}
	return p
}

// derivePool sets the pool maximum and pulls the current value down to it.
func derivePool(p *character.Patch, view *character.Character, pool *character.Vital, valueField, maxField character.Field, newMax int) {
	setIfChanged(p, view, maxField, float64(newMax))
	if pool != nil && pool.Value > newMax {
		p.SetInt(valueField, newMax)
	}
}

func setIfChanged(p *character.Patch, c *character.Character, f character.Field, v float64) {
	if cur, ok := c.Value(f); ok && cur == v {
		return
	}
	p.Set(f, v)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
