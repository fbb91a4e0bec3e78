package character

import (
	"math"
	"strings"
)

// Field is a typed identifier for one numeric leaf of a Character document.
type Field string

const (
	FisicoValue Field = "fisico.value"
	FisicoMod   Field = "fisico.mod"
	AcaoValue   Field = "acao.value"
	AcaoMod     Field = "acao.mod"
	MentalValue Field = "mental.value"
	MentalMod   Field = "mental.mod"
	SocialValue Field = "social.value"
	SocialMod   Field = "social.mod"

	PVValue Field = "pv.value"
	PVMax   Field = "pv.max"
	PMValue Field = "pm.value"
	PMMax   Field = "pm.max"

	DefesaValue    Field = "defesa.value"
	DefesaBase     Field = "defesa.base"
	DefesaArmadura Field = "defesa.armadura"
	DefesaEscudo   Field = "defesa.escudo"
	DefesaOutros   Field = "defesa.outros"

	MoedasCobre Field = "recursos.moedas.cobre"
	MoedasPrata Field = "recursos.moedas.prata"
	MoedasOuro  Field = "recursos.moedas.ouro"
	CargaAtual  Field = "recursos.carga.atual"
	CargaMax    Field = "recursos.carga.max"

	NivelValue     Field = "nivel.value"
	NivelXP        Field = "nivel.xp"
	NivelXPProximo Field = "nivel.xpProximo"

	PontosAtributo   Field = "progressao.pontosAtributo"
	PontosHabilidade Field = "progressao.pontosHabilidade"
)

// AllFields lists every Field in canonical order. Patch.Fields and
// Patch.Apply walk fields in this order.
var AllFields = []Field{
	FisicoValue, FisicoMod, AcaoValue, AcaoMod, MentalValue, MentalMod, SocialValue, SocialMod,
	PVValue, PVMax, PMValue, PMMax,
	DefesaValue, DefesaBase, DefesaArmadura, DefesaEscudo, DefesaOutros,
	MoedasCobre, MoedasPrata, MoedasOuro, CargaAtual, CargaMax,
	NivelValue, NivelXP, NivelXPProximo,
	PontosAtributo, PontosHabilidade,
}

// ValueField returns the ".value" field of attribute name.
func ValueField(name AttributeName) Field {
	return Field(string(name) + ".value")
}

// ModField returns the ".mod" field of attribute name.
func ModField(name AttributeName) Field {
	return Field(string(name) + ".mod")
}

// IsFloat reports whether f holds a fractional quantity.
func (f Field) IsFloat() bool {
	return f == CargaAtual || f == CargaMax
}

// Valid reports whether f is one of AllFields.
func (f Field) Valid() bool {
	for _, known := range AllFields {
		if known == f {
			return true
		}
	}
	return false
}

// attribute splits an attribute field into its attribute and "value"/"mod".
func (f Field) attribute() (AttributeName, string, bool) {
	head, sub, found := strings.Cut(string(f), ".")
	if !found {
		return "", "", false
	}
	name, ok := ParseAttribute(head)
	if !ok || (sub != "value" && sub != "mod") {
		return "", "", false
	}
	return name, sub, true
}

// FieldSet is a set of fields, typically the fields touched by a write.
type FieldSet map[Field]struct{}

// NewFieldSet builds a FieldSet from fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// HasAny reports whether any of fields is in the set.
func (s FieldSet) HasAny(fields ...Field) bool {
	for _, f := range fields {
		if s.Has(f) {
			return true
		}
	}
	return false
}

func toInt(v float64) int {
	return int(math.Round(v))
}
