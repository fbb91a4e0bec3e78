package character

// ItemType classifies an item.
type ItemType string

const (
	Habilidade  ItemType = "habilidade"
	Magia       ItemType = "magia"
	Arma        ItemType = "arma"
	Armadura    ItemType = "armadura"
	Escudo      ItemType = "escudo"
	Equipamento ItemType = "equipamento"
	Pocao       ItemType = "pocao"
)

// ValidItemTypes is the set of recognised item types.
var ValidItemTypes = map[ItemType]bool{
	Habilidade: true, Magia: true, Arma: true, Armadura: true,
	Escudo: true, Equipamento: true, Pocao: true,
}

// Weapon categories.
const (
	CategoriaCorpoACorpo = "corpo-a-corpo"
	CategoriaADistancia  = "a-distancia"
)

// Potion kinds.
const (
	PocaoCura = "cura"
	PocaoPM   = "PM"
)

// Item is an item document, optionally owned by a character.
type Item struct {
	ID      string   `json:"id" yaml:"-"`
	OwnerID string   `json:"ownerId,omitempty" yaml:"-"`
	Name    string   `json:"name" yaml:"name"`
	Type    ItemType `json:"type" yaml:"type"`

	Peso       float64 `json:"peso,omitempty" yaml:"peso"`
	Quantidade int     `json:"quantidade,omitempty" yaml:"quantidade"`
	Equipado   bool    `json:"equipado,omitempty" yaml:"equipado"`
	Penalidade int     `json:"penalidade,omitempty" yaml:"penalidade"`

	// Defesa is the defense bonus of armadura and escudo items.
	Defesa int `json:"defesa,omitempty" yaml:"defesa"`

	// Spell fields.
	CustoMP   int    `json:"custoMP,omitempty" yaml:"custo_mp"`
	Nivel     int    `json:"nivel,omitempty" yaml:"nivel"`
	Escola    string `json:"escola,omitempty" yaml:"escola"`
	Alcance   string `json:"alcance,omitempty" yaml:"alcance"`
	Duracao   string `json:"duracao,omitempty" yaml:"duracao"`
	Descricao string `json:"descricao,omitempty" yaml:"descricao"`

	// Weapon fields. Dano is also shown on spell cards.
	Dano       string `json:"dano,omitempty" yaml:"dano"`
	Categoria  string `json:"categoria,omitempty" yaml:"categoria"`
	Municao    int    `json:"municao,omitempty" yaml:"municao"`
	MunicaoMax int    `json:"municaoMax,omitempty" yaml:"municao_max"`

	// Skill fields.
	Atributo    string `json:"atributo,omitempty" yaml:"atributo"`
	Bonus       int    `json:"bonus,omitempty" yaml:"bonus"`
	BonusClasse int    `json:"bonusClasse,omitempty" yaml:"-"`

	// Potion fields.
	Tipo        string `json:"tipo,omitempty" yaml:"tipo"`
	Recuperacao string `json:"recuperacao,omitempty" yaml:"recuperacao"`

	Prerequisitos string `json:"prerequisitos,omitempty" yaml:"prerequisitos"`
	NivelMinimo   int    `json:"nivelMinimo,omitempty" yaml:"nivel_minimo"`
}

// IsRanged reports whether the item is a ranged weapon.
func (i *Item) IsRanged() bool {
	return i.Categoria == CategoriaADistancia
}

// HasFiniteAmmo reports whether the item tracks an ammunition pool.
func (i *Item) HasFiniteAmmo() bool {
	return i.IsRanged() && i.MunicaoMax > 0
}

// Clone returns a copy of i.
func (i *Item) Clone() *Item {
	cp := *i
	return &cp
}

// ItemField identifies a mutable item field.
type ItemField string

const (
	ItemEquipado    ItemField = "equipado"
	ItemQuantidade  ItemField = "quantidade"
	ItemMunicao     ItemField = "municao"
	ItemDefesa      ItemField = "defesa"
	ItemPeso        ItemField = "peso"
	ItemCustoMP     ItemField = "custoMP"
	ItemBonus       ItemField = "bonus"
	ItemBonusClasse ItemField = "bonusClasse"
	ItemPenalidade  ItemField = "penalidade"
)

// EquipmentRelevantFields are the item fields whose change alters the
// owner's defense or load.
var EquipmentRelevantFields = []ItemField{ItemEquipado, ItemDefesa, ItemPeso, ItemQuantidade, ItemPenalidade}

// ItemPatch is a sparse update to an Item; nil leaves are not part of the patch.
type ItemPatch struct {
	Equipado    *bool    `json:"equipado,omitempty"`
	Quantidade  *int     `json:"quantidade,omitempty"`
	Municao     *int     `json:"municao,omitempty"`
	Defesa      *int     `json:"defesa,omitempty"`
	Peso        *float64 `json:"peso,omitempty"`
	CustoMP     *int     `json:"custoMP,omitempty"`
	Bonus       *int     `json:"bonus,omitempty"`
	BonusClasse *int     `json:"bonusClasse,omitempty"`
	Penalidade  *int     `json:"penalidade,omitempty"`
}

// Fields returns the fields present in the patch.
func (p ItemPatch) Fields() []ItemField {
	var out []ItemField
	add := func(set bool, f ItemField) {
		if set {
			out = append(out, f)
		}
	}
	add(p.Equipado != nil, ItemEquipado)
	add(p.Quantidade != nil, ItemQuantidade)
	add(p.Municao != nil, ItemMunicao)
	add(p.Defesa != nil, ItemDefesa)
	add(p.Peso != nil, ItemPeso)
	add(p.CustoMP != nil, ItemCustoMP)
	add(p.Bonus != nil, ItemBonus)
	add(p.BonusClasse != nil, ItemBonusClasse)
	add(p.Penalidade != nil, ItemPenalidade)
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Merge returns p overlaid with later's non-nil leaves.
func (p ItemPatch) Merge(later ItemPatch) ItemPatch {
	out := p
	overlay(&out.Equipado, later.Equipado)
	overlay(&out.Quantidade, later.Quantidade)
	overlay(&out.Municao, later.Municao)
	overlay(&out.Defesa, later.Defesa)
	overlay(&out.Peso, later.Peso)
	overlay(&out.CustoMP, later.CustoMP)
	overlay(&out.Bonus, later.Bonus)
	overlay(&out.BonusClasse, later.BonusClasse)
	overlay(&out.Penalidade, later.Penalidade)
	return out
}

// Apply writes the patch into item. Quantities and ammunition never go below zero.
func (p ItemPatch) Apply(item *Item) {
	assign(&item.Equipado, p.Equipado)
	assign(&item.Quantidade, p.Quantidade)
	assign(&item.Municao, p.Municao)
	assign(&item.Defesa, p.Defesa)
	assign(&item.Peso, p.Peso)
	assign(&item.CustoMP, p.CustoMP)
	assign(&item.Bonus, p.Bonus)
	assign(&item.BonusClasse, p.BonusClasse)
	assign(&item.Penalidade, p.Penalidade)
	item.Quantidade = max(item.Quantidade, 0)
	item.Municao = max(item.Municao, 0)
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
