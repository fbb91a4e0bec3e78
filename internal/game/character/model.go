// Package character defines the character and item documents and the typed
// patches used to mutate them.
package character

// AttributeName identifies one of the four base attributes.
type AttributeName string

const (
	Fisico AttributeName = "fisico"
	Acao   AttributeName = "acao"
	Mental AttributeName = "mental"
	Social AttributeName = "social"
)

// AllAttributes lists the fixed attribute set in display order.
var AllAttributes = []AttributeName{Fisico, Acao, Mental, Social}

// ParseAttribute resolves a case-sensitive attribute name.
//
// Postcondition: ok is false for any name outside AllAttributes.
func ParseAttribute(s string) (AttributeName, bool) {
	for _, a := range AllAttributes {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Attribute is a base attribute and its derived modifier.
type Attribute struct {
	Value int `json:"value"`
	Mod   int `json:"mod"`
}

// Attributes holds the four base attributes. A nil entry is an attribute the
// document does not carry yet.
type Attributes struct {
	Fisico *Attribute `json:"fisico,omitempty"`
	Acao   *Attribute `json:"acao,omitempty"`
	Mental *Attribute `json:"mental,omitempty"`
	Social *Attribute `json:"social,omitempty"`
}

// Get returns the attribute slot for name, or nil when absent.
func (a *Attributes) Get(name AttributeName) *Attribute {
	if a == nil {
		return nil
	}
	switch name {
	case Fisico:
		return a.Fisico
	case Acao:
		return a.Acao
	case Mental:
		return a.Mental
	case Social:
		return a.Social
	}
	return nil
}

func (a *Attributes) slot(name AttributeName) **Attribute {
	switch name {
	case Fisico:
		return &a.Fisico
	case Acao:
		return &a.Acao
	case Mental:
		return &a.Mental
	case Social:
		return &a.Social
	}
	return nil
}

// Vital is a pool such as PV or PM.
//
// Invariant: 0 <= Value <= Max after every Patch.Apply.
type Vital struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// Defense holds the defense total and its components.
//
// Invariant: Value = 10 + acao + Armadura + Escudo + Outros once recomputed.
type Defense struct {
	Value    int `json:"value"`
	Base     int `json:"base"`
	Armadura int `json:"armadura"`
	Escudo   int `json:"escudo"`
	Outros   int `json:"outros"`
}

// Coins is the purse.
type Coins struct {
	Cobre int `json:"cobre"`
	Prata int `json:"prata"`
	Ouro  int `json:"ouro"`
}

// Load is carried weight against capacity.
type Load struct {
	Atual float64 `json:"atual"`
	Max   float64 `json:"max"`
}

// Resources groups coins and load.
type Resources struct {
	Moedas Coins `json:"moedas"`
	Carga  Load  `json:"carga"`
}

// Level is the progression track.
type Level struct {
	Value     int `json:"value"`
	XP        int `json:"xp"`
	XPProximo int `json:"xpProximo"`
}

// Progression holds unspent advancement points.
type Progression struct {
	PontosAtributo   int `json:"pontosAtributo"`
	PontosHabilidade int `json:"pontosHabilidade"`
}

// Character is a player character document.
//
// Groups are pointers so that a freshly created document can be told apart
// from one that holds zero values.
type Character struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Classe     string       `json:"classe,omitempty"`
	Attributes *Attributes  `json:"attributes,omitempty"`
	PV         *Vital       `json:"pv,omitempty"`
	PM         *Vital       `json:"pm,omitempty"`
	Defesa     *Defense     `json:"defesa,omitempty"`
	Recursos   *Resources   `json:"recursos,omitempty"`
	Nivel      *Level       `json:"nivel,omitempty"`
	Progressao *Progression `json:"progressao,omitempty"`
}

// Attribute returns the named attribute, or nil when absent.
func (c *Character) Attribute(name AttributeName) *Attribute {
	return c.Attributes.Get(name)
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	out := &Character{ID: c.ID, Name: c.Name, Classe: c.Classe}
	if c.Attributes != nil {
		attrs := &Attributes{}
		for _, name := range AllAttributes {
			if a := c.Attributes.Get(name); a != nil {
				cp := *a
				*attrs.slot(name) = &cp
			}
		}
		out.Attributes = attrs
	}
	out.PV = clonePtr(c.PV)
	out.PM = clonePtr(c.PM)
	out.Defesa = clonePtr(c.Defesa)
	out.Recursos = clonePtr(c.Recursos)
	out.Nivel = clonePtr(c.Nivel)
	out.Progressao = clonePtr(c.Progressao)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Value returns the current value of field f and whether the document holds it.
// Integer fields are widened to float64.
func (c *Character) Value(f Field) (float64, bool) {
	if attr, sub, ok := f.attribute(); ok {
		a := c.Attribute(attr)
		if a == nil {
			return 0, false
		}
		if sub == "mod" {
			return float64(a.Mod), true
		}
		return float64(a.Value), true
	}
	switch f {
	case PVValue, PVMax:
		if c.PV == nil {
			return 0, false
		}
		if f == PVValue {
			return float64(c.PV.Value), true
		}
		return float64(c.PV.Max), true
	case PMValue, PMMax:
		if c.PM == nil {
			return 0, false
		}
		if f == PMValue {
			return float64(c.PM.Value), true
		}
		return float64(c.PM.Max), true
	case DefesaValue, DefesaBase, DefesaArmadura, DefesaEscudo, DefesaOutros:
		if c.Defesa == nil {
			return 0, false
		}
		return float64(*defenseLeaf(c.Defesa, f)), true
	case MoedasCobre, MoedasPrata, MoedasOuro, CargaAtual, CargaMax:
		if c.Recursos == nil {
			return 0, false
		}
		switch f {
		case MoedasCobre:
			return float64(c.Recursos.Moedas.Cobre), true
		case MoedasPrata:
			return float64(c.Recursos.Moedas.Prata), true
		case MoedasOuro:
			return float64(c.Recursos.Moedas.Ouro), true
		case CargaAtual:
			return c.Recursos.Carga.Atual, true
		}
		return c.Recursos.Carga.Max, true
	case NivelValue, NivelXP, NivelXPProximo:
		if c.Nivel == nil {
			return 0, false
		}
		switch f {
		case NivelValue:
			return float64(c.Nivel.Value), true
		case NivelXP:
			return float64(c.Nivel.XP), true
		}
		return float64(c.Nivel.XPProximo), true
	case PontosAtributo, PontosHabilidade:
		if c.Progressao == nil {
			return 0, false
		}
		if f == PontosAtributo {
			return float64(c.Progressao.PontosAtributo), true
		}
		return float64(c.Progressao.PontosHabilidade), true
	}
	return 0, false
}

// set writes v to field f, creating the enclosing group when absent.
func (c *Character) set(f Field, v float64) {
	if attr, sub, ok := f.attribute(); ok {
		if c.Attributes == nil {
			c.Attributes = &Attributes{}
		}
		slot := c.Attributes.slot(attr)
		if *slot == nil {
			*slot = &Attribute{}
		}
		if sub == "mod" {
			(*slot).Mod = toInt(v)
		} else {
			(*slot).Value = toInt(v)
		}
		return
	}
	switch f {
	case PVValue, PVMax:
		if c.PV == nil {
			c.PV = &Vital{}
		}
		if f == PVValue {
			c.PV.Value = toInt(v)
		} else {
			c.PV.Max = toInt(v)
		}
	case PMValue, PMMax:
		if c.PM == nil {
			c.PM = &Vital{}
		}
		if f == PMValue {
			c.PM.Value = toInt(v)
		} else {
			c.PM.Max = toInt(v)
		}
	case DefesaValue, DefesaBase, DefesaArmadura, DefesaEscudo, DefesaOutros:
		if c.Defesa == nil {
			c.Defesa = &Defense{}
		}
		*defenseLeaf(c.Defesa, f) = toInt(v)
	case MoedasCobre, MoedasPrata, MoedasOuro, CargaAtual, CargaMax:
		if c.Recursos == nil {
			c.Recursos = &Resources{}
		}
		switch f {
		case MoedasCobre:
			c.Recursos.Moedas.Cobre = toInt(v)
		case MoedasPrata:
			c.Recursos.Moedas.Prata = toInt(v)
		case MoedasOuro:
			c.Recursos.Moedas.Ouro = toInt(v)
		case CargaAtual:
			c.Recursos.Carga.Atual = v
		case CargaMax:
			c.Recursos.Carga.Max = v
		}
	case NivelValue, NivelXP, NivelXPProximo:
		if c.Nivel == nil {
			c.Nivel = &Level{}
		}
		switch f {
		case NivelValue:
			c.Nivel.Value = toInt(v)
		case NivelXP:
			c.Nivel.XP = toInt(v)
		case NivelXPProximo:
			c.Nivel.XPProximo = toInt(v)
		}
	case PontosAtributo, PontosHabilidade:
		if c.Progressao == nil {
			c.Progressao = &Progression{}
		}
		if f == PontosAtributo {
			c.Progressao.PontosAtributo = toInt(v)
		} else {
			c.Progressao.PontosHabilidade = toInt(v)
		}
	}
}

func defenseLeaf(d *Defense, f Field) *int {
	switch f {
	case DefesaBase:
		return &d.Base
	case DefesaArmadura:
		return &d.Armadura
	case DefesaEscudo:
		return &d.Escudo
	case DefesaOutros:
		return &d.Outros
	}
	return &d.Value
}

// clampVitals enforces 0 <= value <= max on PV and PM.
func (c *Character) clampVitals() {
	for _, v := range []*Vital{c.PV, c.PM} {
		if v == nil {
			continue
		}
		if v.Max < 0 {
			v.Max = 0
		}
		if v.Value > v.Max {
			v.Value = v.Max
		}
		if v.Value < 0 {
			v.Value = 0
		}
	}
}
