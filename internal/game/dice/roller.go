package dice

import (
	"strings"

	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
)

// Evaluate rolls every dice term of f with src and reduces the arithmetic.
// Variable references ("@name") are resolved from vars without the "@".
//
// Precondition: f must come from Parse; src must be non-nil.
// Postcondition: Result.Dice lists the dice terms in left-to-right order;
// unknown variables and division by zero yield an error coded cdterr.CodeFormula.
func Evaluate(f *Formula, vars map[string]float64, src Source) (Result, error) {
	ev := evaluator{vars: vars, src: src}
	total, err := ev.expr(f.Expr)
	if err != nil {
		return Result{}, err
	}
	return Result{Formula: f.Raw, Total: total, Dice: ev.dice}, nil
}

// EvaluateString parses formula and evaluates it in a single call.
//
// Postcondition: Returns a Result or a parse/evaluation error.
func EvaluateString(formula string, vars map[string]float64, src Source) (Result, error) {
	f, err := Parse(formula)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(f, vars, src)
}

type evaluator struct {
	vars map[string]float64
	src  Source
	dice []Term
}

func (ev *evaluator) expr(e *Expr) (float64, error) {
	total, err := ev.product(e.Head)
	if err != nil {
		return 0, err
	}
	for _, op := range e.Tail {
		v, err := ev.product(op.Operand)
		if err != nil {
			return 0, err
		}
		if op.Op == "-" {
			total -= v
		} else {
			total += v
		}
	}
	return total, nil
}

func (ev *evaluator) product(p *Product) (float64, error) {
	total, err := ev.unary(p.Head)
	if err != nil {
		return 0, err
	}
	for _, op := range p.Tail {
		v, err := ev.unary(op.Operand)
		if err != nil {
			return 0, err
		}
		if op.Op == "/" {
			if v == 0 {
				return 0, cdterr.Formulaf("dice: division by zero")
			}
			total /= v
		} else {
			total *= v
		}
	}
	return total, nil
}

func (ev *evaluator) unary(u *Unary) (float64, error) {
	v, err := ev.atom(u.Atom)
	if err != nil {
		return 0, err
	}
	for _, s := range u.Signs {
		if s == "-" {
			v = -v
		}
	}
	return v, nil
}

func (ev *evaluator) atom(a *Atom) (float64, error) {
	switch {
	case a.Dice != nil:
		count, sides, err := splitDice(*a.Dice)
		if err != nil {
			return 0, err
		}
		results := make([]int, count)
		sum := 0
		for i := range results {
			results[i] = ev.src.Intn(sides) + 1
			sum += results[i]
		}
		ev.dice = append(ev.dice, Term{Count: count, Sides: sides, Results: results})
		return float64(sum), nil
	case a.Number != nil:
		return *a.Number, nil
	case a.Variable != nil:
		name := strings.TrimPrefix(*a.Variable, "@")
		v, ok := ev.vars[name]
		if !ok {
			return 0, cdterr.Formulaf("dice: unknown variable %q", name)
		}
		return v, nil
	case a.Group != nil:
		return ev.expr(a.Group)
	}
	return 0, cdterr.Formulaf("dice: empty term")
}
