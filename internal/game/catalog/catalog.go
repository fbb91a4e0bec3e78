// Package catalog loads item templates from YAML content files and stamps
// out owned item documents from them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// Entry is one item template.
type Entry struct {
	ID             string `yaml:"id"`
	character.Item `yaml:",inline"`
}

// Validate checks that the Entry satisfies its invariants.
//
// Precondition: e is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (e *Entry) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if e.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !character.ValidItemTypes[e.Type] {
		errs = append(errs, fmt.Errorf("type %q is not a known item type", e.Type))
	}
	if e.Peso < 0 {
		errs = append(errs, errors.New("peso must be >= 0"))
	}
	if e.Quantidade < 0 {
		errs = append(errs, errors.New("quantidade must be >= 0"))
	}
	if e.Dano != "" {
		if err := dice.ValidateDamageFormula(e.Dano); err != nil {
			errs = append(errs, fmt.Errorf("dano: %w", err))
		}
	}
	switch e.Type {
	case character.Arma:
		if e.Categoria != "" && e.Categoria != character.CategoriaCorpoACorpo && e.Categoria != character.CategoriaADistancia {
			errs = append(errs, fmt.Errorf("categoria %q must be %s or %s", e.Categoria, character.CategoriaCorpoACorpo, character.CategoriaADistancia))
		}
		if e.MunicaoMax < 0 || e.Municao < 0 || (e.MunicaoMax > 0 && e.Municao > e.MunicaoMax) {
			errs = append(errs, errors.New("municao must be within [0, municao_max]"))
		}
	case character.Habilidade:
		if e.Atributo != "" {
			if _, ok := character.ParseAttribute(e.Atributo); !ok {
				errs = append(errs, fmt.Errorf("atributo %q is not an attribute", e.Atributo))
			}
		}
	case character.Pocao:
		if e.Tipo != character.PocaoCura && e.Tipo != character.PocaoPM {
			errs = append(errs, fmt.Errorf("tipo %q must be %s or %s", e.Tipo, character.PocaoCura, character.PocaoPM))
		}
		if e.Recuperacao == "" {
			errs = append(errs, errors.New("recuperacao is required for potions"))
		} else if _, err := dice.Parse(e.Recuperacao); err != nil {
			errs = append(errs, fmt.Errorf("recuperacao: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Instantiate returns a new item document owned by ownerID.
//
// Postcondition: the result has an empty ID and Equipado false; quantidade
// is at least 1.
func (e *Entry) Instantiate(ownerID string) *character.Item {
	item := e.Item.Clone()
	item.ID = ""
	item.OwnerID = ownerID
	item.Equipado = false
	if item.Quantidade < 1 {
		item.Quantidade = 1
	}
	if item.HasFiniteAmmo() && item.Municao == 0 {
		item.Municao = item.MunicaoMax
	}
	return item
}

// LoadItems reads all *.yaml and *.yml files from dir. Each file holds a
// YAML sequence of entries.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid entries or the first encountered error.
func LoadItems(dir string) ([]*Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var out []*Entry
	for _, de := range entries {
		ext := filepath.Ext(de.Name())
		if de.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var batch []*Entry
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, e := range batch {
			if err := e.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item %q in %q: %w", e.ID, path, err)
			}
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Registry holds loaded entries indexed by ID.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// LoadRegistry loads dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	items, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, e := range items {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds e to the registry.
//
// Precondition: e must not be nil.
// Postcondition: Get(e.ID) returns (e, true); returns error if e.ID already registered.
func (r *Registry) Register(e *Entry) error {
	if _, exists := r.entries[e.ID]; exists {
		return fmt.Errorf("catalog: Registry.Register: item ID %q already registered", e.ID)
	}
	r.entries[e.ID] = e
	return nil
}

// Get returns the entry for id and whether it was found.
func (r *Registry) Get(id string) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// All returns every entry ordered by ID.
func (r *Registry) All() []*Entry {
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByType returns the entries of type t ordered by ID.
func (r *Registry) ByType(t character.ItemType) []*Entry {
	var out []*Entry
	for _, e := range r.All() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first entry whose name matches name case-insensitively.
func (r *Registry) Find(name string) (*Entry, bool) {
	for _, e := range r.All() {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return nil, false
}
