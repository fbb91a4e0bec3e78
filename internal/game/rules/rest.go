package rules

import "github.com/cory-johannsen/taberneiros/internal/game/character"

// QuickRestPatch restores half of each pool's maximum (rounded down), capped at the maximum.
func QuickRestPatch(c *character.Character) character.Patch {
	var p character.Patch
	restore(&p, c.PV, character.PVValue, func(v character.Vital) int { return v.Value + v.Max/2 })
	restore(&p, c.PM, character.PMValue, func(v character.Vital) int { return v.Value + v.Max/2 })
	return p
}

// LongRestPatch fills both pools.
func LongRestPatch(c *character.Character) character.Patch {
	var p character.Patch
	restore(&p, c.PV, character.PVValue, func(v character.Vital) int { return v.Max })
	restore(&p, c.PM, character.PMValue, func(v character.Vital) int { return v.Max })
	return p
}

// HealPatch adds amount to the pool named by field (PVValue or PMValue),
// capped at the pool maximum and floored at zero.
func HealPatch(c *character.Character, field character.Field, amount int) character.Patch {
	var p character.Patch
	pool := c.PV
	if field == character.PMValue {
		pool = c.PM
	}
	restore(&p, pool, field, func(v character.Vital) int { return v.Value + amount })
	return p
}

// SpendPatch removes cost from the pool named by field, floored at zero.
func SpendPatch(c *character.Character, field character.Field, cost int) character.Patch {
	return HealPatch(c, field, -cost)
}

func restore(p *character.Patch, pool *character.Vital, f character.Field, next func(character.Vital) int) {
	if pool == nil {
		return
	}
	v := min(max(next(*pool), 0), pool.Max)
	if v != pool.Value {
		p.SetInt(f, v)
	}
}
