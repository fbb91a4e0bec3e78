package character

import (
	"errors"
	"fmt"
)

// Attribute bounds for base values.
const (
	MinAttribute = 1
	MaxAttribute = 15
)

// Build constructs a new character document from a name, class and base
// attribute values. Attributes not listed in attrs are left absent so that
// the derived-stat calculator synthesizes them on creation.
//
// Precondition: name must be non-empty; every value in attrs must be in [MinAttribute, MaxAttribute].
// Postcondition: Returns a Character with only identity and attributes set, or a non-nil error.
func Build(id, name, classe string, attrs map[AttributeName]int) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	c := &Character{ID: id, Name: name, Classe: classe}
	for attr, value := range attrs {
		if _, ok := ParseAttribute(string(attr)); !ok {
			return nil, fmt.Errorf("unknown attribute %q", attr)
		}
		if value < MinAttribute || value > MaxAttribute {
			return nil, fmt.Errorf("attribute %s must be %d-%d, got %d", attr, MinAttribute, MaxAttribute, value)
		}
		if c.Attributes == nil {
			c.Attributes = &Attributes{}
		}
		*c.Attributes.slot(attr) = &Attribute{Value: value}
	}
	return c, nil
}

// AttributeLabel returns the display label for an attribute, e.g. "Físico".
func AttributeLabel(name AttributeName) string {
	labels := map[AttributeName]string{
		Fisico: "Físico",
		Acao:   "Ação",
		Mental: "Mental",
		Social: "Social",
	}
	if l, ok := labels[name]; ok {
		return l
	}
	return fmt.Sprintf("<%s>", name)
}
