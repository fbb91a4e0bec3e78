package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
)

// XPForLevel returns the XP needed to leave level.
func XPForLevel(level int) int {
	return level * XPPerLevel
}

// CanLevelUp reports whether the character has banked enough XP.
func CanLevelUp(c *character.Character) bool {
	return c.Nivel != nil && c.Nivel.XP >= c.Nivel.XPProximo
}

// LevelUpPatch advances c by one level, carrying surplus XP and granting one
// attribute point and two skill points.
//
// Postcondition: ok is false and the patch empty when CanLevelUp(c) is false.
func LevelUpPatch(c *character.Character) (p character.Patch, newLevel int, ok bool) {
	if !CanLevelUp(c) {
		return p, 0, false
	}
	newLevel = c.Nivel.Value + 1
	var prog character.Progression
	if c.Progressao != nil {
		prog = *c.Progressao
	}
	p.SetInt(character.NivelValue, newLevel)
	p.SetInt(character.NivelXP, c.Nivel.XP-c.Nivel.XPProximo)
	p.SetInt(character.NivelXPProximo, XPForLevel(newLevel+1))
	p.SetInt(character.PontosAtributo, prog.PontosAtributo+1)
	p.SetInt(character.PontosHabilidade, prog.PontosHabilidade+2)
	return p, newLevel, true
}

var prerequisitePattern = regexp.MustCompile(`(\w+)\s+(\d+)`)

// MeetsPrerequisites checks item's minimum level and every "<attribute> <min>"
// pair found in its prerequisites text. Words that are not attributes are ignored.
func MeetsPrerequisites(c *character.Character, item *character.Item) bool {
	if item.Prerequisitos == "" && item.NivelMinimo == 0 {
		return true
	}
	level := 1
	if c.Nivel != nil {
		level = c.Nivel.Value
	}
	if item.NivelMinimo > level {
		return false
	}
	for _, m := range prerequisitePattern.FindAllStringSubmatch(strings.ToLower(item.Prerequisitos), -1) {
		name, known := character.ParseAttribute(m[1])
		if !known {
			continue
		}
		want, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if a := c.Attribute(name); a != nil && a.Value < want {
			return false
		}
	}
	return true
}

// classSkillBonus maps class to skill category to bonus.
var classSkillBonus = map[string]map[string]int{
	"guerreiro": {"combate": 1},
	"mago":      {"magicas": 1},
	"ladino":    {"gerais": 1},
	"diplomata": {"sociais": 1},
}

// AdjustItemForCharacter returns a copy of item tailored to c: spell costs are
// reduced by the mental modifier (never below 1) and class skills gain their
// class bonus.
//
// Postcondition: item is not modified.
func AdjustItemForCharacter(c *character.Character, item *character.Item) *character.Item {
	out := item.Clone()
	switch out.Type {
	case character.Magia:
		if out.CustoMP > 0 {
			out.CustoMP = max(1, out.CustoMP-Modifier(AttributeValue(c, character.Mental)))
		}
	case character.Habilidade:
		if bonus := classSkillBonus[strings.ToLower(c.Classe)][out.Categoria]; bonus != 0 {
			out.Bonus += bonus
			out.BonusClasse = bonus
		}
	}
	return out
}
