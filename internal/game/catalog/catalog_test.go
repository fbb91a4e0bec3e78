package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taberneiros/internal/game/catalog"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

const contentDir = "../../../content/items"

func writeYAML(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	return dir
}

func TestLoadItems_ParsesInlineFields(t *testing.T) {
	dir := writeYAML(t, "armas.yaml", `
- id: arco
  name: Arco
  type: arma
  peso: 1
  dano: 1d6
  categoria: a-distancia
  municao: 5
  municao_max: 20
`)
	items, err := catalog.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 1)
	e := items[0]
	assert.Equal(t, "arco", e.ID)
	assert.Equal(t, character.Arma, e.Type)
	assert.Equal(t, 1.0, e.Peso)
	assert.Equal(t, 5, e.Municao)
	assert.Equal(t, 20, e.MunicaoMax)
	assert.True(t, e.IsRanged())
}

func TestLoadItems_SkipsOtherFiles(t *testing.T) {
	dir := writeYAML(t, "README.md", "not yaml")
	items, err := catalog.LoadItems(dir)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadItems_MissingDir(t *testing.T) {
	_, err := catalog.LoadItems(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadItems_InvalidEntries(t *testing.T) {
	cases := map[string]string{
		"unknown type":    "- {id: x, name: X, type: anel}",
		"missing id":      "- {name: X, type: arma}",
		"bad damage":      "- {id: x, name: X, type: arma, dano: 'rm -rf'}",
		"bad category":    "- {id: x, name: X, type: arma, categoria: magica}",
		"ammo above max":  "- {id: x, name: X, type: arma, categoria: a-distancia, municao: 5, municao_max: 2}",
		"potion kind":     "- {id: x, name: X, type: pocao, tipo: veneno, recuperacao: 1d4}",
		"potion formula":  "- {id: x, name: X, type: pocao, tipo: cura}",
		"skill attribute": "- {id: x, name: X, type: habilidade, atributo: sorte}",
		"negative weight": "- {id: x, name: X, type: equipamento, peso: -1}",
		"malformed yaml":  "- {id: x",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.LoadItems(writeYAML(t, "bad.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := catalog.NewRegistry()
	e := &catalog.Entry{ID: "adaga", Item: character.Item{Name: "Adaga", Type: character.Arma}}
	require.NoError(t, r.Register(e))
	assert.Error(t, r.Register(e))
}

func TestRegistry_LookupHelpers(t *testing.T) {
	r := catalog.NewRegistry()
	require.NoError(t, r.Register(&catalog.Entry{ID: "b", Item: character.Item{Name: "Tocha", Type: character.Equipamento}}))
	require.NoError(t, r.Register(&catalog.Entry{ID: "a", Item: character.Item{Name: "Adaga", Type: character.Arma}}))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)

	got, ok := r.Find("tocha")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = r.Get("zz")
	assert.False(t, ok)
	assert.Len(t, r.ByType(character.Arma), 1)
}

func TestEntry_Instantiate(t *testing.T) {
	e := &catalog.Entry{ID: "arco", Item: character.Item{
		Name: "Arco", Type: character.Arma, Categoria: character.CategoriaADistancia,
		MunicaoMax: 20, Equipado: true,
	}}
	item := e.Instantiate("c1")
	assert.Empty(t, item.ID)
	assert.Equal(t, "c1", item.OwnerID)
	assert.False(t, item.Equipado)
	assert.Equal(t, 1, item.Quantidade)
	assert.Equal(t, 20, item.Municao)

	item.Name = "changed"
	assert.Equal(t, "Arco", e.Name)
}

func TestContent_AllItemsLoad(t *testing.T) {
	reg, err := catalog.LoadRegistry(contentDir)
	require.NoError(t, err, "content/items should load without error")
	for _, typ := range []character.ItemType{
		character.Arma, character.Armadura, character.Escudo,
		character.Magia, character.Habilidade, character.Pocao, character.Equipamento,
	} {
		assert.NotEmpty(t, reg.ByType(typ), "expected at least one %s", typ)
	}
}

func TestContent_RangedWeaponsCarryAmmo(t *testing.T) {
	reg, err := catalog.LoadRegistry(contentDir)
	require.NoError(t, err)
	for _, e := range reg.ByType(character.Arma) {
		if e.IsRanged() {
			assert.Positive(t, e.MunicaoMax, "ranged weapon %q must track ammo", e.ID)
		}
	}
}

func TestProperty_InstantiatedItemsAlwaysMeetLoadRules(t *testing.T) {
	reg, err := catalog.LoadRegistry(contentDir)
	require.NoError(t, err)
	entries := reg.All()
	rapid.Check(t, func(t *rapid.T) {
		picks := rapid.SliceOfN(rapid.SampledFrom(entries), 0, 8).Draw(t, "picks")
		var items []*character.Item
		for _, e := range picks {
			item := e.Instantiate("c1")
			item.Equipado = true
			items = append(items, item)
		}
		totals := rules.SumEquipment(items)
		if totals.Carga < 0 {
			t.Fatalf("negative load %v", totals.Carga)
		}
	})
}
