package character

import (
	"encoding/json"
	"strings"
)

// Patch is a sparse set of leaf updates to a Character keyed by Field.
//
// The zero value is an empty patch ready to use. A Field that was never set
// is not part of the patch.
type Patch struct {
	leaves map[Field]float64
}

// NewPatch returns an empty Patch.
func NewPatch() Patch {
	return Patch{}
}

// Set records v for f, replacing any earlier value.
func (p *Patch) Set(f Field, v float64) {
	if p.leaves == nil {
		p.leaves = make(map[Field]float64)
	}
	if !f.IsFloat() {
		v = float64(toInt(v))
	}
	p.leaves[f] = v
}

// SetInt records the integer v for f.
func (p *Patch) SetInt(f Field, v int) {
	p.Set(f, float64(v))
}

// Get returns the value recorded for f.
func (p Patch) Get(f Field) (float64, bool) {
	v, ok := p.leaves[f]
	return v, ok
}

// Int returns the value recorded for f rounded to an int.
func (p Patch) Int(f Field) (int, bool) {
	v, ok := p.leaves[f]
	return toInt(v), ok
}

// Has reports whether f is part of the patch.
func (p Patch) Has(f Field) bool {
	_, ok := p.leaves[f]
	return ok
}

// Len returns the number of leaves in the patch.
func (p Patch) Len() int {
	return len(p.leaves)
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.leaves) == 0
}

// Fields returns the patched fields in canonical order.
func (p Patch) Fields() []Field {
	out := make([]Field, 0, len(p.leaves))
	for _, f := range AllFields {
		if _, ok := p.leaves[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// FieldSet returns the patched fields as a set.
func (p Patch) FieldSet() FieldSet {
	return NewFieldSet(p.Fields()...)
}

// Merge returns the deep merge of p and later. Leaves present in later
// override those in p; groups merge key-wise. Neither input is modified.
//
// Postcondition: p.Merge(a).Merge(b) == p.Merge(a.Merge(b)).
func (p Patch) Merge(later Patch) Patch {
	out := Patch{leaves: make(map[Field]float64, len(p.leaves)+len(later.leaves))}
	for f, v := range p.leaves {
		out.leaves[f] = v
	}
	for f, v := range later.leaves {
		out.leaves[f] = v
	}
	return out
}

// Apply writes every leaf of p into c, creating absent groups, then clamps
// PV and PM so that 0 <= value <= max.
//
// Precondition: c is non-nil.
func (p Patch) Apply(c *Character) {
	for _, f := range p.Fields() {
		c.set(f, p.leaves[f])
	}
	c.clampVitals()
}

// Equal reports whether p and o hold the same leaves.
func (p Patch) Equal(o Patch) bool {
	if len(p.leaves) != len(o.leaves) {
		return false
	}
	for f, v := range p.leaves {
		ov, ok := o.leaves[f]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON renders the patch as a nested document, e.g.
// {"pv":{"value":7},"pm":{"value":3}}.
func (p Patch) MarshalJSON() ([]byte, error) {
	root := map[string]any{}
	for _, f := range p.Fields() {
		parts := strings.Split(string(f), ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		v := p.leaves[f]
		if f.IsFloat() {
			node[parts[len(parts)-1]] = v
		} else {
			node[parts[len(parts)-1]] = toInt(v)
		}
	}
	return json.Marshal(root)
}

// UnmarshalJSON reads the nested form written by MarshalJSON. Unknown keys are ignored.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	*p = Patch{}
	walkPatch(p, "", root)
	return nil
}

func walkPatch(p *Patch, prefix string, node map[string]any) {
	for k, v := range node {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			walkPatch(p, path, val)
		case float64:
			if f := Field(path); f.Valid() {
				p.Set(f, val)
			}
		}
	}
}
