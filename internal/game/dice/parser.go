package dice

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
)

const (
	// MaxDiceCount bounds N in a single NdS term.
	MaxDiceCount = 100
	// MaxDiceSides bounds S in a single NdS term.
	MaxDiceSides = 1000
)

// damageAlphabet is the full character set accepted in damage formulas.
const damageAlphabet = "0123456789d+-*/() "

// formulaLexer tokenizes dice formulas. Dice must precede Number so that
// "2d6" is a single token.
var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dice", Pattern: `[0-9]*[dD][0-9]+`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?|\.[0-9]+`},
	{Name: "Variable", Pattern: `@[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Operator", Pattern: `[-+*/()]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Formula is a parsed dice expression ready to be evaluated.
type Formula struct {
	// Raw is the original input string.
	Raw  string
	Expr *Expr
}

// Expr is a sum of terms.
type Expr struct {
	Head *Product `parser:"@@"`
	Tail []*AddOp `parser:"@@*"`
}

// AddOp is "+ term" or "- term".
type AddOp struct {
	Op      string   `parser:"@(\"+\" | \"-\")"`
	Operand *Product `parser:"@@"`
}

// Product is a product of signed atoms.
type Product struct {
	Head *Unary   `parser:"@@"`
	Tail []*MulOp `parser:"@@*"`
}

// MulOp is "* unary" or "/ unary".
type MulOp struct {
	Op      string `parser:"@(\"*\" | \"/\")"`
	Operand *Unary `parser:"@@"`
}

// Unary is an atom preceded by any number of sign operators.
type Unary struct {
	Signs []string `parser:"@(\"+\" | \"-\")*"`
	Atom  *Atom    `parser:"@@"`
}

// Atom is a dice term, a literal, a variable reference or a parenthesised expression.
type Atom struct {
	Dice     *string  `parser:"  @Dice"`
	Number   *float64 `parser:"| @Number"`
	Variable *string  `parser:"| @Variable"`
	Group    *Expr    `parser:"| \"(\" @@ \")\""`
}

var formulaParser = participle.MustBuild[Expr](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a dice formula.
// Supported forms: "2d6", "d20", "1d8+2", "(1d6+1) * 2", "2d6 + @attr + @bonus", "3/2".
//
// Precondition: none; empty input is reported as an error.
// Postcondition: Returns a Formula whose dice terms all satisfy 1 <= N <= MaxDiceCount
// and 1 <= S <= MaxDiceSides, or an error coded cdterr.CodeFormula.
func Parse(formula string) (*Formula, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, cdterr.Formulaf("dice: empty formula")
	}
	expr, err := formulaParser.ParseString("", formula)
	if err != nil {
		return nil, cdterr.WrapWithCode(err, cdterr.CodeFormula, "dice: malformed formula "+strconv.Quote(formula))
	}
	if err := checkDice(expr); err != nil {
		return nil, err
	}
	return &Formula{Raw: formula, Expr: expr}, nil
}

// MustParse parses formula and panics on error. Useful for package-level constants.
//
// Precondition: formula must be valid.
func MustParse(formula string) *Formula {
	f, err := Parse(formula)
	if err != nil {
		panic("dice: MustParse failed for formula " + formula + ": " + err.Error())
	}
	return f
}

// ValidateDamageFormula rejects any formula containing characters outside
// [0-9d+\-*/() ]. Nothing is evaluated.
//
// Postcondition: returns nil or an error coded cdterr.CodeValidation.
func ValidateDamageFormula(formula string) error {
	if strings.TrimSpace(formula) == "" {
		return cdterr.Validation("Fórmula de dano inválida")
	}
	for _, r := range formula {
		if !strings.ContainsRune(damageAlphabet, r) {
			return cdterr.Validationf("Fórmula de dano contém caracteres inválidos: %q", r).
				WithMeta("formula", formula)
		}
	}
	return nil
}

// splitDice parses the text of a Dice token into count and sides.
func splitDice(tok string) (count, sides int, err error) {
	s := strings.ToLower(tok)
	idx := strings.Index(s, "d")
	count = 1
	if idx > 0 {
		count, err = strconv.Atoi(s[:idx])
		if err != nil {
			return 0, 0, cdterr.Formulaf("dice: invalid die count in %q", tok)
		}
	}
	sides, err = strconv.Atoi(s[idx+1:])
	if err != nil {
		return 0, 0, cdterr.Formulaf("dice: invalid die sides in %q", tok)
	}
	if count < 1 || count > MaxDiceCount {
		return 0, 0, cdterr.Formulaf("dice: die count in %q must be 1-%d", tok, MaxDiceCount)
	}
	if sides < 1 || sides > MaxDiceSides {
		return 0, 0, cdterr.Formulaf("dice: die sides in %q must be 1-%d", tok, MaxDiceSides)
	}
	return count, sides, nil
}

func checkDice(e *Expr) error {
	if err := checkProduct(e.Head); err != nil {
		return err
	}
	for _, op := range e.Tail {
		if err := checkProduct(op.Operand); err != nil {
			return err
		}
	}
	return nil
}

func checkProduct(p *Product) error {
	if err := checkAtom(p.Head.Atom); err != nil {
		return err
	}
	for _, op := range p.Tail {
		if err := checkAtom(op.Operand.Atom); err != nil {
			return err
		}
	}
	return nil
}

func checkAtom(a *Atom) error {
	switch {
	case a.Dice != nil:
		_, _, err := splitDice(*a.Dice)
		return err
	case a.Group != nil:
		return checkDice(a.Group)
	}
	return nil
}
